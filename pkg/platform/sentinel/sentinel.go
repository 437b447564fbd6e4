package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can classify outcomes without knowing which backend
// produced them.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no record lives under the requested transaction identifier
// - ErrConflict: the transaction identifier is already claimed by a live record
// - ErrUnavailable: the backing store cannot be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
