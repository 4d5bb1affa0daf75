package warnings

import (
	"context"
	"sync"
	"time"

	"github.com/sumezulike/Referee/pkg/models"
)

// MemoryStore is an in-memory Store implementation. It backs tests and can
// serve as a throwaway store for local development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]*models.Warning
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]*models.Warning),
		now:  time.Now,
	}
}

// Put persists a new warning
func (s *MemoryStore) Put(_ context.Context, w *models.Warning) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *w
	s.data[w.UserID] = append(s.data[w.UserID], &cp)
	return nil
}

// List returns every warning recorded for a user
func (s *MemoryStore) List(_ context.Context, userID string) ([]*models.Warning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	warnings := make([]*models.Warning, 0, len(s.data[userID]))
	for _, w := range s.data[userID] {
		cp := *w
		warnings = append(warnings, &cp)
	}
	return warnings, nil
}

// ListActive returns the unexpired warnings for a user
func (s *MemoryStore) ListActive(_ context.Context, userID string) ([]*models.Warning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var warnings []*models.Warning
	for _, w := range s.data[userID] {
		if w.Active(now) {
			cp := *w
			warnings = append(warnings, &cp)
		}
	}
	return warnings, nil
}

// ListAll returns all warnings grouped by user
func (s *MemoryStore) ListAll(_ context.Context) (map[string][]*models.Warning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string][]*models.Warning, len(s.data))
	for userID, list := range s.data {
		for _, w := range list {
			cp := *w
			all[userID] = append(all[userID], &cp)
		}
	}
	return all, nil
}

// ListAllActive returns all unexpired warnings grouped by user
func (s *MemoryStore) ListAllActive(_ context.Context) (map[string][]*models.Warning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	active := make(map[string][]*models.Warning)
	for userID, list := range s.data {
		for _, w := range list {
			if w.Active(now) {
				cp := *w
				active[userID] = append(active[userID], &cp)
			}
		}
	}
	return active, nil
}

// Expire marks all active warnings of a user as expired now
func (s *MemoryStore) Expire(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, w := range s.data[userID] {
		if w.Active(now) {
			w.ExpirationTime = now
		}
	}
	return nil
}
