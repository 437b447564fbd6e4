// Package handler is the thin HTTP layer over the registration lifecycle
// service. It decodes requests, delegates, and maps lifecycle results onto
// the voter records wire format; no business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformmetrics "vanadium/internal/platform/metrics"
	"vanadium/internal/platform/middleware"
	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	dErrors "vanadium/pkg/domain-errors"
	"vanadium/pkg/requestcontext"
)

// maxBodyBytes bounds registration payloads. The payload is opaque, so the
// cap only guards against abuse.
const maxBodyBytes = 1 << 20

// Intent labels for status-code mapping and summaries.
const (
	intentCreate = "create"
	intentStatus = "status"
	intentUpdate = "update"
	intentCancel = "cancel"
)

// Service defines the lifecycle operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, requested domain.TransactionID, record models.Record) (models.Result, error)
	Status(ctx context.Context, id domain.TransactionID) (models.Result, error)
	Update(ctx context.Context, id domain.TransactionID, record models.Record) (models.Result, error)
	Cancel(ctx context.Context, id domain.TransactionID) (models.Result, error)
}

// Handler handles the voter registration endpoints.
type Handler struct {
	logger         *slog.Logger
	registration   Service
	metrics        *platformmetrics.Metrics
	requestTimeout time.Duration
}

// New creates a registration Handler.
func New(registration Service, logger *slog.Logger, metrics *platformmetrics.Metrics, requestTimeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		logger:         logger,
		registration:   registration,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// Register mounts the voter registration routes with the shared middleware
// chain onto the given router.
func (h *Handler) Register(r chi.Router) {
	vr := chi.NewRouter()
	vr.Use(middleware.Recovery(h.logger))
	vr.Use(middleware.RequestID)
	vr.Use(middleware.ClientMetadata)
	vr.Use(middleware.RequestTime)
	vr.Use(middleware.Logger(h.logger))
	vr.Use(middleware.Timeout(h.requestTimeout))
	vr.Use(middleware.ContentTypeJSON)
	vr.Use(middleware.Latency(h.metrics))

	vr.Post("/voter/registration", h.handleCreate)
	vr.Get("/voter/registration/{transactionID}", h.handleStatus)
	vr.Put("/voter/registration/{transactionID}", h.handleUpdate)
	vr.Delete("/voter/registration/{transactionID}", h.handleCancel)

	r.Mount("/", vr)
}

// handleCreate initiates a new voter registration request. The client may
// supply its own transaction identifier; otherwise one is generated.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, req, err := h.decodeRequest(w, r)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	var requested domain.TransactionID
	if req.TransactionID != "" {
		requested, err = domain.ParseTransactionID(req.TransactionID)
		if err != nil {
			h.writeError(w, ctx, err)
			return
		}
	}

	result, err := h.registration.Create(ctx, requested, h.newRecord(ctx, body))
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	h.writeResult(w, intentCreate, result)
}

// handleStatus checks on a pending voter registration request. Lookup is done
// through the transaction identifier only.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseTransactionID(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	result, err := h.registration.Status(ctx, id)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	h.writeResult(w, intentStatus, result)
}

// handleUpdate replaces a pending voter registration request in place.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseTransactionID(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	body, _, err := h.decodeRequest(w, r)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	result, err := h.registration.Update(ctx, id, h.newRecord(ctx, body))
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	h.writeResult(w, intentUpdate, result)
}

// handleCancel deletes a pending voter registration request.
func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseTransactionID(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	result, err := h.registration.Cancel(ctx, id)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	h.writeResult(w, intentCancel, result)
}

// decodeRequest reads the bounded body and validates it as a voter records
// request. The raw body is returned alongside the decoded envelope so the
// payload reaches the store unchanged.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) ([]byte, models.VoterRecordsRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, models.VoterRecordsRequest{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "could not read request body")
	}
	if len(body) == 0 {
		return nil, models.VoterRecordsRequest{}, dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}

	var req models.VoterRecordsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, models.VoterRecordsRequest{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request body")
	}
	return body, req, nil
}

func (h *Handler) newRecord(ctx context.Context, body []byte) models.Record {
	now := requestcontext.Now(ctx)
	return models.Record{
		Payload:    body,
		ReceivedAt: now,
		UpdatedAt:  now,
	}
}

// writeResult maps a lifecycle result onto the wire envelope and the status
// code the reference API uses: 201 for create success, 200 for the other
// successes, 400 for create conflict, 404 for unknown identifiers.
func (h *Handler) writeResult(w http.ResponseWriter, intent string, result models.Result) {
	var (
		status   int
		envelope models.Envelope
	)

	switch result.Kind {
	case models.KindSuccess:
		status = http.StatusOK
		if intent == intentCreate {
			status = http.StatusCreated
		}
		envelope = models.Envelope{
			Status:  "Success",
			Summary: successSummary(intent),
			Response: models.RequestSuccess{
				Action:        []models.SuccessAction{result.Action},
				TransactionID: result.TransactionID.String(),
			},
		}

	case models.KindAcknowledgement:
		status = http.StatusOK
		envelope = models.Envelope{
			Status:  "Success",
			Summary: successSummary(intent),
			Response: models.RequestAcknowledgement{
				TransactionID: result.TransactionID.String(),
			},
		}

	case models.KindRejection:
		status = http.StatusNotFound
		if intent == intentCreate {
			status = http.StatusBadRequest
		}
		envelope = models.Envelope{
			Status:  "Failure",
			Summary: failureSummary(intent),
			Response: models.RequestRejection{
				AdditionalDetails: result.Details,
				Error:             &models.ErrorBody{Name: result.Error},
				TransactionID:     result.TransactionID.String(),
			},
		}
	}

	h.writeJSON(w, status, envelope)
}

func successSummary(intent string) string {
	switch intent {
	case intentCreate:
		return "Voter registration request created"
	case intentStatus:
		return "Voter registration request is in process"
	case intentUpdate:
		return "Voter registration request updated"
	default:
		return "Voter registration request has been cancelled"
	}
}

func failureSummary(intent string) string {
	if intent == intentCreate {
		return "Voter registration request already exists"
	}
	return "Voter registration request not found"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError centralizes domain error translation to HTTP responses. Backend
// faults surface as 503, never as a conflict or a missing record.
func (h *Handler) writeError(w http.ResponseWriter, ctx context.Context, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	h.writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{"error": string(code)})
}
