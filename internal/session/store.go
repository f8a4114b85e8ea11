package session

import (
	"context"
	"sync"
	"time"

	"calmate-web/internal/model"
)

// Record is the single piece of durable client state: one token per browser
// session, keyed by the id carried in the signed cookie.
type Record struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Store persists session records. Implementations: MemoryStore (default) and
// PostgresStore (when DATABASE_URL is configured).
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	rec, exists := s.records[id]
	s.mu.RUnlock()

	if !exists {
		return Record{}, model.ErrSessionNotFound
	}

	if rec.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return Record{}, model.ErrSessionNotFound
	}

	return rec, nil
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.gcLocked()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// gcLocked drops expired records so the map does not grow unbounded under
// churn. Called with the write lock held.
func (s *MemoryStore) gcLocked() {
	if len(s.records) < 1000 {
		return
	}

	now := time.Now()
	for id, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, id)
		}
	}
}
