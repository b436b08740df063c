// Package model defines domain entities used by services and repositories.
package model

import "time"

// Blob sizes enforced by the entry store. Name and content are padded or
// truncated server-side to their fixed lengths; salts must arrive at exactly
// SaltSize bytes.
const (
	SaltSize    = 32
	NameSize    = 128
	ContentSize = 1024
)

// UsernameMaxBytes bounds usernames at the account layer.
const UsernameMaxBytes = 320

// DefaultAllowance is the entry quota assigned to new accounts.
const DefaultAllowance = 4096

// User represents an account stored on the server. Passwords are never
// stored; only the salted Argon2id digest is.
type User struct {
	ID        int64
	Username  string // unique
	PwdHash   []byte // Digest(password, PwdSalt, DigestPassword)
	PwdSalt   []byte // per-user 32-byte salt
	Allowance int    // max number of entries the user may own
	CreatedAt time.Time
}

// Entry is a single stored record. Salt, name and content are opaque
// ciphertext produced on the client side; the server never inspects them.
type Entry struct {
	ID         int64
	OwnerID    int64 // FK -> users.id
	Salt       []byte
	Name       []byte
	Content    []byte
	LastChange time.Time // server-set, bumped on every mutation
}

// EntryChange is one line of the sync manifest: enough for a client to decide
// whether it needs to fetch the full record.
type EntryChange struct {
	ID         int64
	LastChange time.Time
}

// Session is a bearer capability: uid plus sliding expiration. It has no
// server-side identity; tamper evidence is the transport's job.
type Session struct {
	UID       int64
	ExpiresAt time.Time
}
