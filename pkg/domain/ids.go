// Package domain holds the identifier primitives shared across the service.
// Identifiers are distinct types so a transaction identifier can never be
// passed where a subject identity is expected: the transaction ID names one
// request lifecycle, the subject ID names the person the request is about.
package domain

import (
	"unicode"

	"github.com/google/uuid"

	dErrors "vanadium/pkg/domain-errors"
)

// MaxIDLength bounds caller-supplied identifiers. Generated identifiers are
// UUIDs and always fit.
const MaxIDLength = 128

// TransactionID is the opaque token naming one registration transaction.
// Callers may supply their own token on create; otherwise the store generates
// a UUID.
type TransactionID string

// SubjectID identifies the person a registration request concerns. It is
// carried opaquely inside the request payload and is never used as a storage
// key.
type SubjectID string

// NewTransactionID returns a freshly generated transaction identifier.
func NewTransactionID() TransactionID {
	return TransactionID(uuid.NewString())
}

// ParseTransactionID validates a caller-supplied transaction identifier.
// Tokens are opaque, so validation only rejects values that cannot survive a
// round trip through URLs and logs: empty strings, oversized strings, and
// strings containing whitespace or control characters.
func ParseTransactionID(s string) (TransactionID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction id must not be empty")
	}
	if len(s) > MaxIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction id exceeds maximum length")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "transaction id contains whitespace or control characters")
		}
	}
	return TransactionID(s), nil
}

// String returns the raw token.
func (id TransactionID) String() string {
	return string(id)
}

// IsNil reports whether the identifier is unset.
func (id TransactionID) IsNil() bool {
	return id == ""
}

// String returns the raw subject identity token.
func (id SubjectID) String() string {
	return string(id)
}
