// Package service contains application services for authentication and entries.
package service

import (
	"context"
	"errors"
	"fmt"

	pkgcrypto "github.com/dkorchagin/entryvault/internal/crypto"
	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/limiter"
	"github.com/dkorchagin/entryvault/internal/model"
	"github.com/dkorchagin/entryvault/internal/repository"
	"github.com/dkorchagin/entryvault/internal/session"
)

// AuthService defines account and authentication operations.
type AuthService interface {
	// Register creates a new account and returns its id.
	Register(ctx context.Context, username, password string) (int64, error)
	// Authenticate verifies credentials with rate limiting and issues a
	// session. Unknown username and wrong password are indistinguishable.
	Authenticate(ctx context.Context, username, password, ip string) (model.Session, error)
	// DeleteAccount removes the user and, by cascade, all owned entries.
	DeleteAccount(ctx context.Context, uid int64) error
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	sessions *session.Manager
	lim      limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, sessions *session.Manager, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, sessions: sessions, lim: lim}
}

// Register creates a new user record with a fresh per-user salt and the
// default entry allowance.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: empty username/password", errs.ErrValidation)
	}
	if len(username) > model.UsernameMaxBytes {
		return 0, fmt.Errorf("%w: username longer than %d bytes", errs.ErrValidation, model.UsernameMaxBytes)
	}
	salt, err := pkgcrypto.GenerateSalt()
	if err != nil {
		return 0, err
	}
	u := &model.User{
		Username:  username,
		PwdHash:   pkgcrypto.Digest([]byte(password), salt, pkgcrypto.DigestPassword),
		PwdSalt:   salt,
		Allowance: model.DefaultAllowance,
	}
	return s.users.Create(ctx, u)
}

// Authenticate verifies credentials under the rate limiter and issues a
// session for the owning user. The digest comparison is constant-time.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password, ip string) (model.Session, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Session{}, err
	}
	if !allowed {
		return model.Session{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyDigest([]byte(password), u.PwdSalt, pkgcrypto.DigestPassword, u.PwdHash) {
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			// infrastructure fault, not a credential failure
			return model.Session{}, err
		}
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Session{}, errs.ErrRateLimited
		}
		// unknown username and wrong password produce the same outcome
		return model.Session{}, errs.ErrUnauthorized
	}

	// best-effort counter reset
	_ = s.lim.Success(ctx, username, ipHash)

	return s.sessions.Issue(u.ID), nil
}

// DeleteAccount removes the user; entries follow via the owner cascade.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, uid int64) error {
	if uid <= 0 {
		return fmt.Errorf("%w: bad uid", errs.ErrValidation)
	}
	if err := s.users.Delete(ctx, uid); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNoUser
		}
		return err
	}
	return nil
}
