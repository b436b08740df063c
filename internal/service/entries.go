package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
	"github.com/dkorchagin/entryvault/internal/repository"
)

// EntryService defines owner-scoped operations over opaque entries, including
// the change feed used for incremental sync.
type EntryService interface {
	// Count returns how many entries the owner holds.
	Count(ctx context.Context, ownerID int64) (int, error)
	// Create stores a new entry and returns its id. Name and content are
	// normalized to their fixed sizes; the salt must be exactly 32 bytes.
	Create(ctx context.Context, ownerID int64, salt, name, content []byte) (int64, error)
	// Update replaces all opaque fields of one entry.
	Update(ctx context.Context, ownerID, id int64, salt, name, content []byte) error
	// Delete removes one entry; repeating the call reports ErrNotFound.
	Delete(ctx context.Context, ownerID, id int64) error
	// Get fetches a single entry.
	Get(ctx context.Context, ownerID, id int64) (*model.Entry, error)
	// Changes returns the (id, last_change) manifest clients diff locally.
	Changes(ctx context.Context, ownerID int64) ([]model.EntryChange, error)
	// ChangedAfter returns full entries changed strictly after ts,
	// ordered by last_change ascending.
	ChangedAfter(ctx context.Context, ownerID int64, ts time.Time) ([]model.Entry, error)
}

type EntryServiceImpl struct {
	repo repository.EntryRepository
}

// NewEntryService constructs EntryService.
func NewEntryService(repo repository.EntryRepository) *EntryServiceImpl {
	return &EntryServiceImpl{repo: repo}
}

// fixedSize pads b with zero bytes, or truncates it, to exactly n bytes.
func fixedSize(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}

func checkOwner(ownerID int64) error {
	if ownerID <= 0 {
		return fmt.Errorf("%w: bad owner id", errs.ErrValidation)
	}
	return nil
}

func checkSalt(salt []byte) error {
	if len(salt) != model.SaltSize {
		return fmt.Errorf("%w: salt must be %d bytes, got %d", errs.ErrValidation, model.SaltSize, len(salt))
	}
	return nil
}

// Count returns the owner's current entry count.
func (s *EntryServiceImpl) Count(ctx context.Context, ownerID int64) (int, error) {
	if err := checkOwner(ownerID); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, ownerID)
}

// Create validates and normalizes the blobs, then inserts under quota.
func (s *EntryServiceImpl) Create(ctx context.Context, ownerID int64, salt, name, content []byte) (int64, error) {
	if err := checkOwner(ownerID); err != nil {
		return 0, err
	}
	if err := checkSalt(salt); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, ownerID,
		salt, fixedSize(name, model.NameSize), fixedSize(content, model.ContentSize))
}

// Update replaces salt/name/content of one entry. A missing id never reaches
// storage and reports absence.
func (s *EntryServiceImpl) Update(ctx context.Context, ownerID, id int64, salt, name, content []byte) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	if id <= 0 {
		return errs.ErrNotFound
	}
	if err := checkSalt(salt); err != nil {
		return err
	}
	return s.repo.Update(ctx, ownerID, id,
		salt, fixedSize(name, model.NameSize), fixedSize(content, model.ContentSize))
}

// Delete removes one entry.
func (s *EntryServiceImpl) Delete(ctx context.Context, ownerID, id int64) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	if id <= 0 {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, ownerID, id)
}

// Get fetches a single entry by id.
func (s *EntryServiceImpl) Get(ctx context.Context, ownerID, id int64) (*model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Changes returns the sync manifest for the owner.
func (s *EntryServiceImpl) Changes(ctx context.Context, ownerID int64) ([]model.EntryChange, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repo.Changes(ctx, ownerID)
}

// ChangedAfter returns entries with last_change strictly greater than ts.
func (s *EntryServiceImpl) ChangedAfter(ctx context.Context, ownerID int64, ts time.Time) ([]model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repo.ChangedAfter(ctx, ownerID, ts)
}
