// Package store persists registration transactions keyed by transaction
// identifier. Implementations are interchangeable: the service only depends
// on the Store contract, so the in-memory map, PostgreSQL, and Redis backends
// can be swapped without touching business code.
package store

import (
	"context"

	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
)

// Store is the identity-keyed persistence contract.
//
// Outcome classification rides on the error value: a nil error means the
// operation resolved (created, found, updated, removed), sentinel.ErrConflict
// means the identifier is already claimed (Insert only), and
// sentinel.ErrNotFound means no live record holds the identifier. Any other
// error is a backend fault and must never be mistaken for either of those
// facts.
//
// Identifiers are unique among live records at all times, and removing a
// record frees its identifier for reuse by a later Insert. Insert's
// check-then-act must be atomic with respect to concurrent inserts of the
// same identifier: at most one wins.
type Store interface {
	// Insert stores a record under the requested identifier, or under a
	// freshly generated one when requested is nil. The identifier actually
	// used is returned; it is always the requested one when that was
	// supplied.
	Insert(ctx context.Context, requested domain.TransactionID, record models.Record) (domain.TransactionID, error)

	// Lookup returns the record held under id. The record is returned by
	// value and is never mutated by the lookup.
	Lookup(ctx context.Context, id domain.TransactionID) (models.Record, error)

	// Update replaces the record held under id. It never creates: an
	// unknown identifier yields sentinel.ErrNotFound.
	Update(ctx context.Context, id domain.TransactionID, record models.Record) error

	// Remove deletes the record held under id and frees the identifier.
	Remove(ctx context.Context, id domain.TransactionID) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
