package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

const sessionKeyPrefix = "session/"

// PebbleSessionStore keeps sessions on local disk so carts survive restarts.
type PebbleSessionStore struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

func NewPebbleSessionStore(dir string, ttl time.Duration) (*PebbleSessionStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleSessionStore{db: d, ttl: ttl, now: time.Now}, nil
}

func sessionKey(id string) []byte { return []byte(sessionKeyPrefix + id) }

func (p *PebbleSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	v, closer, err := p.db.Get(sessionKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return domain.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess, err := decodeSession(v)
	_ = closer.Close()
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.IsZero() && p.now().After(sess.ExpiresAt) {
		if err := p.Delete(ctx, id); err != nil {
			return nil, err
		}
		return domain.NewSession(id), nil
	}
	return sess, nil
}

func (p *PebbleSessionStore) Save(ctx context.Context, sess *domain.Session) error {
	sess.ExpiresAt = p.now().Add(p.ttl)
	raw, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := p.db.Set(sessionKey(sess.ID), raw, pebble.Sync); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *PebbleSessionStore) Delete(ctx context.Context, id string) error {
	if err := p.db.Delete(sessionKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *PebbleSessionStore) Sweep(ctx context.Context) (int, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(sessionKeyPrefix),
		UpperBound: []byte("session0"), // '0' sorts right after '/'
	})
	if err != nil {
		return 0, err
	}
	now := p.now()
	var expired [][]byte
	for it.First(); it.Valid(); it.Next() {
		sess, err := decodeSession(it.Value())
		if err != nil || now.After(sess.ExpiresAt) {
			expired = append(expired, append([]byte(nil), it.Key()...))
		}
	}
	if err := it.Close(); err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	wb := p.db.NewBatch()
	defer wb.Close()
	for _, k := range expired {
		if err := wb.Delete(k, nil); err != nil {
			return 0, err
		}
	}
	if err := wb.Commit(pebble.Sync); err != nil {
		return 0, err
	}
	return len(expired), nil
}

func (p *PebbleSessionStore) Close() error { return p.db.Close() }
