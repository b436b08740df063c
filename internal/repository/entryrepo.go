package repository

import (
	"context"
	"time"

	"github.com/dkorchagin/entryvault/internal/model"
)

// EntryRepository provides tenant-scoped access to stored entries. Every
// operation takes the owner id; no operation observes another owner's rows.
type EntryRepository interface {
	// Count returns the number of entries the owner currently holds.
	Count(ctx context.Context, ownerID int64) (int, error)

	// Create inserts a new entry under the owner's allowance and returns its
	// id. ErrNoUser when the owner is gone, ErrLimitExceeded at quota,
	// ErrAlreadyExists on identity collision.
	Create(ctx context.Context, ownerID int64, salt, name, content []byte) (int64, error)

	// Update replaces salt/name/content and bumps last_change atomically.
	// ErrNotFound when no row matches (ownerID, id).
	Update(ctx context.Context, ownerID, id int64, salt, name, content []byte) error

	// Delete removes exactly one entry. ErrNotFound when nothing matched;
	// a repeated delete of the same id therefore fails.
	Delete(ctx context.Context, ownerID, id int64) error

	// Get loads a single entry. ErrNotFound when absent.
	Get(ctx context.Context, ownerID, id int64) (*model.Entry, error)

	// Changes returns the (id, last_change) manifest for all owner entries.
	Changes(ctx context.Context, ownerID int64) ([]model.EntryChange, error)

	// ChangedAfter returns full entries with last_change strictly after ts,
	// ordered by last_change ascending.
	ChangedAfter(ctx context.Context, ownerID int64, ts time.Time) ([]model.Entry, error)
}
