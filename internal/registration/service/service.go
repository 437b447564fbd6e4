// Package service implements the registration transaction lifecycle: create,
// status, update, and cancel. Each operation makes exactly one store call and
// classifies its outcome into a success, acknowledgement, or rejection
// result. The service holds no record state of its own; the store owns every
// record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vanadium/internal/registration/metrics"
	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	dErrors "vanadium/pkg/domain-errors"
	"vanadium/pkg/platform/sentinel"
	"vanadium/pkg/requestcontext"
)

// Rejection details reported to clients. The wording distinguishes the two
// rejection kinds even though both carry the same error name.
const (
	detailAlreadyExists = "The transaction ID is already associated to a pending request."
	detailNotFound      = "The transaction ID isn't associated with any pending requests."
)

// Intent labels for metrics and tracing.
const (
	intentCreate = "create"
	intentStatus = "status"
	intentUpdate = "update"
	intentCancel = "cancel"
)

// Store is the persistence contract the lifecycle needs. Satisfied by every
// backend in internal/registration/store.
type Store interface {
	Insert(ctx context.Context, requested domain.TransactionID, record models.Record) (domain.TransactionID, error)
	Lookup(ctx context.Context, id domain.TransactionID) (models.Record, error)
	Update(ctx context.Context, id domain.TransactionID, record models.Record) error
	Remove(ctx context.Context, id domain.TransactionID) error
}

// Service is the transaction lifecycle handler. It is a pure mapping from
// (intent, input, store outcome) to a result; rejections are results, not
// errors. The error return is reserved for backend faults.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New constructs the lifecycle service. The store is passed in explicitly so
// tests can run against a fresh instance each.
func New(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("vanadium/registration"),
	}
}

// Create admits a new registration transaction. When requested is nil the
// store generates the identifier; when the caller supplied one that is
// already claimed, the rejection deliberately carries no identifier: the
// request was never admitted, so no identifier belongs to the caller.
func (s *Service) Create(ctx context.Context, requested domain.TransactionID, record models.Record) (models.Result, error) {
	ctx, finish := s.begin(ctx, intentCreate, requested)

	id, err := s.store.Insert(ctx, requested, record)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			finish(resultRejected)
			return rejection(""), nil
		}
		finish(resultFault)
		return models.Result{}, s.fault(ctx, intentCreate, err)
	}

	s.logger.InfoContext(ctx, "registration request created",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", id.String(),
		"generated", requested.IsNil(),
	)
	finish(resultSuccess)
	return models.Result{
		Kind:          models.KindSuccess,
		Action:        models.SuccessActionRegistrationCreated,
		TransactionID: id,
	}, nil
}

// Status reports whether a transaction is pending. The lookup is read-only;
// the stored record is not modified or returned.
func (s *Service) Status(ctx context.Context, id domain.TransactionID) (models.Result, error) {
	ctx, finish := s.begin(ctx, intentStatus, id)

	if _, err := s.store.Lookup(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			finish(resultRejected)
			return rejection(id), nil
		}
		finish(resultFault)
		return models.Result{}, s.fault(ctx, intentStatus, err)
	}

	finish(resultSuccess)
	return models.Result{
		Kind:          models.KindAcknowledgement,
		TransactionID: id,
	}, nil
}

// Update replaces the record of a pending transaction in place. It never
// creates: an unknown identifier is rejected.
func (s *Service) Update(ctx context.Context, id domain.TransactionID, record models.Record) (models.Result, error) {
	ctx, finish := s.begin(ctx, intentUpdate, id)

	if err := s.store.Update(ctx, id, record); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			finish(resultRejected)
			return rejection(id), nil
		}
		finish(resultFault)
		return models.Result{}, s.fault(ctx, intentUpdate, err)
	}

	s.logger.InfoContext(ctx, "registration request updated",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", id.String(),
	)
	finish(resultSuccess)
	return models.Result{
		Kind:          models.KindSuccess,
		Action:        models.SuccessActionRegistrationUpdated,
		TransactionID: id,
	}, nil
}

// Cancel deletes a pending transaction and frees its identifier for reuse.
// Cancelling an unknown or already-cancelled identifier is a rejection, not a
// fault.
func (s *Service) Cancel(ctx context.Context, id domain.TransactionID) (models.Result, error) {
	ctx, finish := s.begin(ctx, intentCancel, id)

	if err := s.store.Remove(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			finish(resultRejected)
			return rejection(id), nil
		}
		finish(resultFault)
		return models.Result{}, s.fault(ctx, intentCancel, err)
	}

	s.logger.InfoContext(ctx, "registration request cancelled",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", id.String(),
	)
	finish(resultSuccess)
	return models.Result{
		Kind:          models.KindSuccess,
		Action:        models.SuccessActionRegistrationCancelled,
		TransactionID: id,
	}, nil
}

const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultFault    = "fault"
)

// begin opens a span and returns a finish callback that records metrics and
// closes the span with the outcome label.
func (s *Service) begin(ctx context.Context, intent string, id domain.TransactionID) (context.Context, func(result string)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration."+intent)
	if !id.IsNil() {
		span.SetAttributes(attribute.String("registration.transaction_id", id.String()))
	}
	return ctx, func(result string) {
		span.SetAttributes(attribute.String("registration.result", result))
		span.End()
		s.metrics.IncrementOutcome(intent, result)
		s.metrics.ObserveLatency(intent, time.Since(start))
	}
}

// fault wraps a backend failure so transport reports it as unavailability,
// never as a conflict or a missing record.
func (s *Service) fault(ctx context.Context, intent string, err error) error {
	s.logger.ErrorContext(ctx, "registration store call failed",
		"request_id", requestcontext.RequestID(ctx),
		"intent", intent,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "registration store unavailable")
}

// rejection builds the shared rejection shape. The identifier is echoed back
// on status/update/cancel absence and omitted on create conflict.
func rejection(id domain.TransactionID) models.Result {
	detail := detailNotFound
	if id.IsNil() {
		detail = detailAlreadyExists
	}
	return models.Result{
		Kind:          models.KindRejection,
		Error:         models.RequestErrorIdentityLookupFailed,
		Details:       []string{detail},
		TransactionID: id,
	}
}
