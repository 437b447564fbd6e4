// Package models defines the registration transaction data model and the wire
// shapes of the voter records API. Field names on the wire follow the NIST
// voter records interchange conventions used by the upstream schema
// (TransactionId, Action, AdditionalDetails).
package models

import (
	"encoding/json"
	"time"

	"vanadium/pkg/domain"
)

// SuccessAction tags what a successful lifecycle operation did.
type SuccessAction string

const (
	SuccessActionRegistrationCreated   SuccessAction = "registration-created"
	SuccessActionRegistrationUpdated   SuccessAction = "registration-updated"
	SuccessActionRegistrationCancelled SuccessAction = "registration-cancelled"
)

// RequestError names a machine-readable failure reported to the client.
type RequestError string

// RequestErrorIdentityLookupFailed covers both rejection kinds the API
// reports: an identifier that is already claimed (create) and an identifier
// that is not recognized (status/update/cancel). The two kinds stay distinct
// inside the service via sentinel errors; the transport separates them by
// status code.
const RequestErrorIdentityLookupFailed RequestError = "identity-lookup-failed"

// Record is the registration payload held for one transaction. The payload is
// the raw request body captured at the transport boundary; the service and
// stores never interpret it, only its presence matters.
type Record struct {
	Payload    json.RawMessage
	ReceivedAt time.Time
	UpdatedAt  time.Time
}

// VoterRecordsRequest is the decoded envelope of an incoming registration
// request. Only the transaction identifier is lifted out; the remainder of
// the body is carried opaquely as Record.Payload.
type VoterRecordsRequest struct {
	TransactionID string `json:"TransactionId,omitempty"`
}

// ResultKind discriminates the three result shapes a lifecycle operation can
// produce.
type ResultKind int

const (
	// KindSuccess reports a completed create, update, or cancel.
	KindSuccess ResultKind = iota
	// KindAcknowledgement reports a successful status lookup. The shape
	// carries no detail beyond the identifier.
	KindAcknowledgement
	// KindRejection reports a refused operation with a machine-readable
	// error name and human-readable details.
	KindRejection
)

// Result is the outcome of one lifecycle operation. Exactly the fields for
// its kind are set: Action for KindSuccess, Error and Details for
// KindRejection. TransactionID is empty only on a create-conflict rejection,
// where the request was never admitted and no identifier belongs to the
// caller.
type Result struct {
	Kind          ResultKind
	Action        SuccessAction
	Error         RequestError
	Details       []string
	TransactionID domain.TransactionID
}

// --- Wire response shapes ---

// RequestSuccess is the response body for a completed create, update, or
// cancel.
type RequestSuccess struct {
	Action        []SuccessAction `json:"Action"`
	TransactionID string          `json:"TransactionId,omitempty"`
}

// ErrorBody names the failure inside a rejection.
type ErrorBody struct {
	Name RequestError `json:"Name"`
}

// RequestRejection is the response body for a refused operation.
type RequestRejection struct {
	AdditionalDetails []string   `json:"AdditionalDetails,omitempty"`
	Error             *ErrorBody `json:"Error,omitempty"`
	TransactionID     string     `json:"TransactionId,omitempty"`
}

// RequestAcknowledgement is the response body for a successful status lookup.
type RequestAcknowledgement struct {
	TransactionID string `json:"TransactionId"`
}

// Envelope wraps every API response with a coarse status and a human-readable
// summary alongside the official response body.
type Envelope struct {
	Status   string `json:"status"`
	Summary  string `json:"summary"`
	Response any    `json:"response"`
}
