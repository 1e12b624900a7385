package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// SessionStore persists visitor sessions between requests. Load never
// fails for an unknown or expired id; it returns a fresh session instead.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Sweep drops expired sessions and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
	Close() error
}

func encodeSession(sess *domain.Session) ([]byte, error) {
	return json.Marshal(sess)
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.Normalize()
	return &sess, nil
}

// MemorySessionStore keeps encoded sessions in a map. Sessions are copied
// in and out so handlers never share a *Session.
type MemorySessionStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
	now  func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string][]byte), ttl: ttl, now: time.Now}
}

func (s *MemorySessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	raw, ok := s.data[id]
	s.mu.Unlock()
	if !ok {
		return domain.NewSession(id), nil
	}
	sess, err := decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return domain.NewSession(id), nil
	}
	return sess, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, sess *domain.Session) error {
	sess.ExpiresAt = s.now().Add(s.ttl)
	raw, err := encodeSession(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[sess.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, raw := range s.data {
		sess, err := decodeSession(raw)
		if err != nil || now.After(sess.ExpiresAt) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemorySessionStore) Close() error { return nil }
