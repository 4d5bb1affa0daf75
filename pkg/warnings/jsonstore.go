package warnings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sumezulike/Referee/pkg/models"
)

// JSONStore is a single-file Store implementation. It loads the whole file on
// open and writes it back after every mutation. Useful when running without a
// database; the records survive restarts.
type JSONStore struct {
	path string
	mu   sync.Mutex
	data map[string][]*models.Warning
	now  func() time.Time
}

// OpenJSONStore opens or creates the JSON file at path
func OpenJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path: path,
		data: make(map[string][]*models.Warning),
		now:  time.Now,
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if len(content) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(content, &s.data); err != nil {
		return nil, fmt.Errorf("malformed warning database %s: %w", path, err)
	}
	return s, nil
}

// flush writes the current data to disk. Callers must hold s.mu.
func (s *JSONStore) flush() error {
	content, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0644)
}

// Put persists a new warning
func (s *JSONStore) Put(_ context.Context, w *models.Warning) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *w
	s.data[w.UserID] = append(s.data[w.UserID], &cp)
	return s.flush()
}

// List returns every warning recorded for a user
func (s *JSONStore) List(_ context.Context, userID string) ([]*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings := make([]*models.Warning, 0, len(s.data[userID]))
	for _, w := range s.data[userID] {
		cp := *w
		warnings = append(warnings, &cp)
	}
	return warnings, nil
}

// ListActive returns the unexpired warnings for a user
func (s *JSONStore) ListActive(_ context.Context, userID string) ([]*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
func (s *JSONStore) ListAll(_ context.Context) (map[string][]*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
func (s *JSONStore) ListAllActive(_ context.Context) (map[string][]*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
func (s *JSONStore) Expire(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := false
	for _, w := range s.data[userID] {
		if w.Active(now) {
			w.ExpirationTime = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flush()
}
