// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/dkorchagin/entryvault/internal/model"
)

// UserRepository provides account storage.
type UserRepository interface {
	// Create inserts a new user and returns the generated id.
	// ErrAlreadyExists on username collision.
	Create(ctx context.Context, u *model.User) (int64, error)
	// GetByID loads a user by id. ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by username. ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Delete removes the user; owned entries go with it (cascade).
	// ErrNotFound when no such user.
	Delete(ctx context.Context, id int64) error
}
