package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vanadium/pkg/domain-errors"
)

// TestParseTransactionID_Invariants validates the parsing invariant:
// caller-supplied identifiers must be non-empty, bounded, and free of
// whitespace and control characters.
func TestParseTransactionID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseTransactionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := ParseTransactionID(strings.Repeat("a", MaxIDLength+1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts input at the length bound", func(t *testing.T) {
		id, err := ParseTransactionID(strings.Repeat("a", MaxIDLength))
		require.NoError(t, err)
		assert.Len(t, id.String(), MaxIDLength)
	})

	t.Run("accepts an opaque caller token", func(t *testing.T) {
		id, err := ParseTransactionID("state-portal-00042")
		require.NoError(t, err)
		assert.Equal(t, TransactionID("state-portal-00042"), id)
	})

	t.Run("accepts a generated identifier", func(t *testing.T) {
		generated := NewTransactionID()
		id, err := ParseTransactionID(generated.String())
		require.NoError(t, err)
		assert.Equal(t, generated, id)
	})
}

// TestParseTransactionID_SecurityInvariants validates trust boundary parsing:
// identifiers arrive in URLs and end up in logs and storage keys, so anything
// that cannot survive that path is rejected.
func TestParseTransactionID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"null byte injection", "txn-1\x00suffix", true},
		{"newline injection", "txn-1\nSet-Cookie: x", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"tab character", "txn\t1", true},

		// Edge cases
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"embedded space", "txn 1", true},

		// Valid
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", false},
		{"opaque token", "NVRA-2026-000417", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTransactionID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestTypeDistinction verifies the compiler enforces type safety between the
// transaction identifier and the subject identity.
func TestTypeDistinction(t *testing.T) {
	txnID := TransactionID(uuid.NewString())
	subjectID := SubjectID(uuid.NewString())

	// These would fail to compile if types were interchangeable:
	// var _ TransactionID = subjectID   // compile error
	// var _ SubjectID = txnID           // compile error

	assert.NotEqual(t, txnID.String(), subjectID.String())
}

func TestTransactionID_IsNil(t *testing.T) {
	assert.True(t, TransactionID("").IsNil())
	assert.False(t, NewTransactionID().IsNil())
}
