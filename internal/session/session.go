// Package session implements sliding-window bearer sessions. A session is a
// stateless token {uid, expiration}: validity is computed from the token's
// own fields plus a point-in-time user existence check, with no server-side
// session table.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
	"github.com/dkorchagin/entryvault/internal/repository"
)

// DefaultTTL is the sliding validity window applied on issue and on every
// successful validation.
const DefaultTTL = 10 * time.Minute

// Manager issues and validates sessions.
type Manager struct {
	users repository.UserRepository
	ttl   time.Duration
	now   func() time.Time
}

// NewManager constructs a session manager over the given user store.
func NewManager(users repository.UserRepository, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{users: users, ttl: ttl, now: time.Now}
}

// Issue creates a session for uid expiring one TTL from now.
func (m *Manager) Issue(uid int64) model.Session {
	return model.Session{UID: uid, ExpiresAt: m.now().Add(m.ttl)}
}

// Validate checks s and, when valid, returns a copy with the expiration slid
// forward by one TTL. An expired session, or one whose owner no longer
// exists, yields ErrNoSession and must be discarded by the caller.
func (m *Manager) Validate(ctx context.Context, s model.Session) (model.Session, error) {
	now := m.now()
	if !now.Before(s.ExpiresAt) {
		return model.Session{}, errs.ErrNoSession
	}
	if _, err := m.users.GetByID(ctx, s.UID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Session{}, errs.ErrNoSession
		}
		return model.Session{}, err
	}
	return model.Session{UID: s.UID, ExpiresAt: now.Add(m.ttl)}, nil
}
