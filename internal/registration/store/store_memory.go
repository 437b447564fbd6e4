package store

import (
	"context"
	"sync"

	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	"vanadium/pkg/platform/sentinel"
)

// MemoryStore keeps transactions in a process-local map. It is the default
// backend for this mock API and the one tests build on: cheap to construct,
// one instance per test, no shared state between them.
//
// A single mutex covers the whole identifier space so Insert's existence
// check and claim happen atomically.
type MemoryStore struct {
	mu      sync.Mutex
	records map[domain.TransactionID]models.Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.TransactionID]models.Record)}
}

func (s *MemoryStore) Insert(_ context.Context, requested domain.TransactionID, record models.Record) (domain.TransactionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := requested
	if id.IsNil() {
		id = domain.NewTransactionID()
		for {
			if _, exists := s.records[id]; !exists {
				break
			}
			id = domain.NewTransactionID()
		}
	} else if _, exists := s.records[id]; exists {
		return "", sentinel.ErrConflict
	}

	s.records[id] = record
	return id, nil
}

func (s *MemoryStore) Lookup(_ context.Context, id domain.TransactionID) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *MemoryStore) Update(_ context.Context, id domain.TransactionID, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[id] = record
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id domain.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of live transactions. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
