package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vanadium/internal/registration/handler/mocks"
	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	dErrors "vanadium/pkg/domain-errors"
	"vanadium/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler-mocks.go -package=mocks Service

type RegistrationHandlerSuite struct {
	suite.Suite
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

// envelopeBody mirrors the wire envelope with the response left raw so each
// test can decode the shape it expects.
type envelopeBody struct {
	Status   string          `json:"status"`
	Summary  string          `json:"summary"`
	Response json.RawMessage `json:"response"`
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger, nil, 0).Register(r)
	return r, mockService
}

func decodeEnvelope(t *testing.T, body []byte) envelopeBody {
	t.Helper()
	var env envelopeBody
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func (s *RegistrationHandlerSuite) TestHandleCreate() {
	s.Run("created with a generated identifier", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Create(gomock.Any(), domain.TransactionID(""), gomock.Any()).
			Return(models.Result{
				Kind:          models.KindSuccess,
				Action:        models.SuccessActionRegistrationCreated,
				TransactionID: "txn-1",
			}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/voter/registration", `{"Form":"NVRA"}`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Success", env.Status)
		assert.Equal(s.T(), "Voter registration request created", env.Summary)

		var success models.RequestSuccess
		require.NoError(s.T(), json.Unmarshal(env.Response, &success))
		assert.Equal(s.T(), []models.SuccessAction{models.SuccessActionRegistrationCreated}, success.Action)
		assert.Equal(s.T(), "txn-1", success.TransactionID)
	})

	s.Run("created with a caller-supplied identifier", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Create(gomock.Any(), domain.TransactionID("txn-9"), gomock.Any()).
			Return(models.Result{
				Kind:          models.KindSuccess,
				Action:        models.SuccessActionRegistrationCreated,
				TransactionID: "txn-9",
			}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/voter/registration", `{"TransactionId":"txn-9"}`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("conflict rejection returns 400 without an identifier", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Create(gomock.Any(), domain.TransactionID("txn-9"), gomock.Any()).
			Return(models.Result{
				Kind:    models.KindRejection,
				Error:   models.RequestErrorIdentityLookupFailed,
				Details: []string{"The transaction ID is already associated to a pending request."},
			}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/voter/registration", `{"TransactionId":"txn-9"}`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Failure", env.Status)
		assert.Equal(s.T(), "Voter registration request already exists", env.Summary)

		var rejection models.RequestRejection
		require.NoError(s.T(), json.Unmarshal(env.Response, &rejection))
		require.NotNil(s.T(), rejection.Error)
		assert.Equal(s.T(), models.RequestErrorIdentityLookupFailed, rejection.Error.Name)
		assert.Empty(s.T(), rejection.TransactionID)
	})

	s.Run("malformed body is rejected before the service is called", func() {
		r, _ := newTestRouter(s.T())

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/voter/registration", `{not json`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "invalid-input")
	})

	s.Run("empty body is rejected", func() {
		r, _ := newTestRouter(s.T())

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/voter/registration", nil)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "invalid-input")
	})

	s.Run("non-JSON content type is rejected", func() {
		r, _ := newTestRouter(s.T())

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/voter/registration", `{"Form":"NVRA"}`)
		req.Header.Set("Content-Type", "text/plain")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusUnsupportedMediaType)
	})
}

func (s *RegistrationHandlerSuite) TestHandleStatus() {
	s.Run("acknowledges a pending request", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Status(gomock.Any(), domain.TransactionID("txn-1")).
			Return(models.Result{
				Kind:          models.KindAcknowledgement,
				TransactionID: "txn-1",
			}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/voter/registration/txn-1")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Success", env.Status)
		assert.Equal(s.T(), "Voter registration request is in process", env.Summary)

		var ack models.RequestAcknowledgement
		require.NoError(s.T(), json.Unmarshal(env.Response, &ack))
		assert.Equal(s.T(), "txn-1", ack.TransactionID)
	})

	s.Run("unknown identifier returns 404 and echoes it back", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Status(gomock.Any(), domain.TransactionID("txn-missing")).
			Return(models.Result{
				Kind:          models.KindRejection,
				Error:         models.RequestErrorIdentityLookupFailed,
				Details:       []string{"The transaction ID isn't associated with any pending requests."},
				TransactionID: "txn-missing",
			}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/voter/registration/txn-missing")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Voter registration request not found", env.Summary)

		var rejection models.RequestRejection
		require.NoError(s.T(), json.Unmarshal(env.Response, &rejection))
		assert.Equal(s.T(), "txn-missing", rejection.TransactionID)
	})

	s.Run("backend fault surfaces as 503, never as a rejection", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Status(gomock.Any(), domain.TransactionID("txn-1")).
			Return(models.Result{}, dErrors.New(dErrors.CodeUnavailable, "registration store unavailable"))

		req := testutil.NewRequest(s.T(), http.MethodGet, "/voter/registration/txn-1")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		testutil.AssertErrorCode(s.T(), rr, "unavailable")
	})
}

func (s *RegistrationHandlerSuite) TestHandleUpdate() {
	s.Run("updates a pending request", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Update(gomock.Any(), domain.TransactionID("txn-1"), gomock.Any()).
			Return(models.Result{
				Kind:          models.KindSuccess,
				Action:        models.SuccessActionRegistrationUpdated,
				TransactionID: "txn-1",
			}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPut, "/voter/registration/txn-1", `{"Form":"NVRA","Revision":2}`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Voter registration request updated", env.Summary)

		var success models.RequestSuccess
		require.NoError(s.T(), json.Unmarshal(env.Response, &success))
		assert.Equal(s.T(), []models.SuccessAction{models.SuccessActionRegistrationUpdated}, success.Action)
	})

	s.Run("unknown identifier returns 404", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Update(gomock.Any(), domain.TransactionID("txn-missing"), gomock.Any()).
			Return(models.Result{
				Kind:          models.KindRejection,
				Error:         models.RequestErrorIdentityLookupFailed,
				Details:       []string{"The transaction ID isn't associated with any pending requests."},
				TransactionID: "txn-missing",
			}, nil)

		req := testutil.NewRequestWithBody(s.T(), http.MethodPut, "/voter/registration/txn-missing", `{"Form":"NVRA"}`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})

	s.Run("malformed body is rejected before the service is called", func() {
		r, _ := newTestRouter(s.T())

		req := testutil.NewRequestWithBody(s.T(), http.MethodPut, "/voter/registration/txn-1", `{not json`)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "invalid-input")
	})
}

func (s *RegistrationHandlerSuite) TestHandleCancel() {
	s.Run("cancels a pending request", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Cancel(gomock.Any(), domain.TransactionID("txn-1")).
			Return(models.Result{
				Kind:          models.KindSuccess,
				Action:        models.SuccessActionRegistrationCancelled,
				TransactionID: "txn-1",
			}, nil)

		req := testutil.NewRequest(s.T(), http.MethodDelete, "/voter/registration/txn-1")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := decodeEnvelope(s.T(), testutil.ReadBody(s.T(), rr))
		assert.Equal(s.T(), "Voter registration request has been cancelled", env.Summary)
	})

	s.Run("unknown identifier returns 404", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().
			Cancel(gomock.Any(), domain.TransactionID("txn-missing")).
			Return(models.Result{
				Kind:          models.KindRejection,
				Error:         models.RequestErrorIdentityLookupFailed,
				Details:       []string{"The transaction ID isn't associated with any pending requests."},
				TransactionID: "txn-missing",
			}, nil)

		req := testutil.NewRequest(s.T(), http.MethodDelete, "/voter/registration/txn-missing")
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}
