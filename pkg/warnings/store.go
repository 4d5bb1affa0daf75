// Package warnings implements the warning lifecycle and role reconciliation
// engine: recording warnings, tracking their active window, escalating
// punishments and keeping the warned marker role in sync with the store.
package warnings

import (
	"context"

	"github.com/sumezulike/Referee/pkg/models"
)

// Store is the durable storage for warning records. Implementations must be
// safe for concurrent use. Warnings are append-only; Expire is the only
// mutation and it rewrites expiration times instead of deleting history.
type Store interface {
	// Put persists a new warning.
	Put(ctx context.Context, w *models.Warning) error

	// List returns every warning ever recorded for a user, active or not.
	List(ctx context.Context, userID string) ([]*models.Warning, error)

	// ListActive returns the warnings for a user that have not expired yet.
	ListActive(ctx context.Context, userID string) ([]*models.Warning, error)

	// ListAll returns all warnings grouped by user.
	ListAll(ctx context.Context) (map[string][]*models.Warning, error)

	// ListAllActive returns all unexpired warnings grouped by user.
	ListAllActive(ctx context.Context) (map[string][]*models.Warning, error)

	// Expire marks all of a user's active warnings as expired now,
	// keeping the records for history.
	Expire(ctx context.Context, userID string) error
}
