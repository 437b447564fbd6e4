package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	"vanadium/pkg/platform/sentinel"
)

// Schema creates the table backing PostgresStore. Applied by deploy tooling
// and by the integration tests against a fresh container.
const Schema = `
CREATE TABLE IF NOT EXISTS registration_requests (
	transaction_id TEXT PRIMARY KEY,
	payload        JSONB NOT NULL,
	received_at    TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
`

// PostgresStore persists registration transactions in PostgreSQL. This store
// is pure I/O; outcome classification and everything above it belongs to the
// service.
//
// Insert relies on the primary key plus ON CONFLICT DO NOTHING, so concurrent
// inserts of the same identifier are linearized by the database and exactly
// one wins.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed registration store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, requested domain.TransactionID, record models.Record) (domain.TransactionID, error) {
	query := `
		INSERT INTO registration_requests (transaction_id, payload, received_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (transaction_id) DO NOTHING
	`

	id := requested
	generated := id.IsNil()
	if generated {
		id = domain.NewTransactionID()
	}

	for {
		result, err := s.db.ExecContext(ctx, query, id.String(), []byte(record.Payload), record.ReceivedAt)
		if err != nil {
			return "", fmt.Errorf("insert registration request: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("insert registration request rows affected: %w", err)
		}
		if rows > 0 {
			return id, nil
		}
		if !generated {
			return "", sentinel.ErrConflict
		}
		// A generated UUID collided with a live row. Practically unreachable,
		// but the uniqueness contract says retry rather than fail.
		id = domain.NewTransactionID()
	}
}

func (s *PostgresStore) Lookup(ctx context.Context, id domain.TransactionID) (models.Record, error) {
	query := `
		SELECT payload, received_at, updated_at
		FROM registration_requests
		WHERE transaction_id = $1
	`
	var record models.Record
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&payload, &record.ReceivedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, sentinel.ErrNotFound
		}
		return models.Record{}, fmt.Errorf("lookup registration request: %w", err)
	}
	record.Payload = payload
	return record, nil
}

func (s *PostgresStore) Update(ctx context.Context, id domain.TransactionID, record models.Record) error {
	query := `
		UPDATE registration_requests
		SET payload = $2, updated_at = $3
		WHERE transaction_id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id.String(), []byte(record.Payload), record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update registration request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration request rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, id domain.TransactionID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM registration_requests WHERE transaction_id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("remove registration request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove registration request rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
