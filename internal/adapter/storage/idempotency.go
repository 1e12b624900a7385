package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// CachedResponse is a stored reply for a replayed Idempotency-Key.
type CachedResponse struct {
	Status int
	Body   []byte
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (CachedResponse, bool, error)
	// Put records the first response for key; later calls are ignored.
	Put(ctx context.Context, key string, resp CachedResponse) error
}

type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]CachedResponse
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{data: make(map[string]CachedResponse)}
}

func (s *MemoryIdempotencyStore) Get(ctx context.Context, key string) (CachedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.data[key]
	return resp, ok, nil
}

func (s *MemoryIdempotencyStore) Put(ctx context.Context, key string, resp CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		resp.Body = append([]byte(nil), resp.Body...)
		s.data[key] = resp
	}
	return nil
}

// SQLIdempotencyStore keeps keys in the idempotency_keys table.
type SQLIdempotencyStore struct {
	db *DB
}

func NewSQLIdempotencyStore(db *DB) *SQLIdempotencyStore {
	return &SQLIdempotencyStore{db: db}
}

func (s *SQLIdempotencyStore) Get(ctx context.Context, key string) (CachedResponse, bool, error) {
	var resp CachedResponse
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT response_status, response_body FROM idempotency_keys WHERE key_id = ?"),
		key).Scan(&resp.Status, &resp.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedResponse{}, false, nil
	}
	if err != nil {
		return CachedResponse{}, false, err
	}
	return resp, true, nil
}

func (s *SQLIdempotencyStore) Put(ctx context.Context, key string, resp CachedResponse) error {
	query := "INSERT INTO idempotency_keys (key_id, response_status, response_body) VALUES (?, ?, ?) ON CONFLICT DO NOTHING"
	if s.db.Dialect == MySQL {
		query = "INSERT IGNORE INTO idempotency_keys (key_id, response_status, response_body) VALUES (?, ?, ?)"
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key, resp.Status, resp.Body)
	return err
}
