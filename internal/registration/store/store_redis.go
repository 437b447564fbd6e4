package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vanadium/internal/registration/models"
	"vanadium/pkg/domain"
	"vanadium/pkg/platform/sentinel"
)

// Redis key prefix for registration transactions.
const registrationKeyPrefix = "vr:txn:"

// RedisStore persists registration transactions in Redis. Suitable when
// several instances of the mock API need to share transaction state.
//
// Every operation is a single Redis command, so the conflict and absence
// checks are atomic without client-side locking: SETNX claims an identifier,
// SETXX replaces only an existing record, DEL reports whether anything was
// removed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed registration store. The client
// lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// redisRecord is the stored JSON shape. Records live until cancelled, so no
// TTL is set.
type redisRecord struct {
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (s *RedisStore) Insert(ctx context.Context, requested domain.TransactionID, record models.Record) (domain.TransactionID, error) {
	data, err := marshalRecord(record)
	if err != nil {
		return "", err
	}

	id := requested
	generated := id.IsNil()
	if generated {
		id = domain.NewTransactionID()
	}

	for {
		claimed, err := s.client.SetNX(ctx, registrationKey(id), data, 0).Result()
		if err != nil {
			return "", fmt.Errorf("insert registration request: %w", err)
		}
		if claimed {
			return id, nil
		}
		if !generated {
			return "", sentinel.ErrConflict
		}
		// Generated UUID collided with a live key; pick another.
		id = domain.NewTransactionID()
	}
}

func (s *RedisStore) Lookup(ctx context.Context, id domain.TransactionID) (models.Record, error) {
	data, err := s.client.Get(ctx, registrationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("lookup registration request: %w", err)
	}
	return unmarshalRecord(data)
}

func (s *RedisStore) Update(ctx context.Context, id domain.TransactionID, record models.Record) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}
	replaced, err := s.client.SetXX(ctx, registrationKey(id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("update registration request: %w", err)
	}
	if !replaced {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, id domain.TransactionID) error {
	removed, err := s.client.Del(ctx, registrationKey(id)).Result()
	if err != nil {
		return fmt.Errorf("remove registration request: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func registrationKey(id domain.TransactionID) string {
	return registrationKeyPrefix + id.String()
}

func marshalRecord(record models.Record) ([]byte, error) {
	data, err := json.Marshal(redisRecord{
		Payload:    record.Payload,
		ReceivedAt: record.ReceivedAt,
		UpdatedAt:  record.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal registration record: %w", err)
	}
	return data, nil
}

func unmarshalRecord(data []byte) (models.Record, error) {
	var stored redisRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return models.Record{}, fmt.Errorf("unmarshal registration record: %w", err)
	}
	return models.Record{
		Payload:    stored.Payload,
		ReceivedAt: stored.ReceivedAt,
		UpdatedAt:  stored.UpdatedAt,
	}, nil
}
