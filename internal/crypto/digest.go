// Package crypto implements the salted Argon2id digest engine with domain
// separation between password and generic-data hashing.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// DigestType selects the hash domain. The tag is folded into the salt before
// hashing, so a password digest and a data digest of identical input never
// collide.
type DigestType byte

// Hash domains.
const (
	DigestPassword DigestType = 0x01
	DigestData     DigestType = 0x02
)

// SaltSize is the only accepted salt length.
const SaltSize = 32

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// GenerateSalt returns a fresh cryptographically secure 32-byte salt.
func GenerateSalt() ([]byte, error) {
	b := make([]byte, SaltSize)
	_, err := rand.Read(b)
	return b, err
}

// Digest computes the Argon2id hash of data under salt and domain tag.
// A wrong-length salt is a programming error, not a recoverable condition.
func Digest(data, salt []byte, typ DigestType) []byte {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("crypto: salt must be %d bytes, got %d", SaltSize, len(salt)))
	}
	tagged := make([]byte, 0, SaltSize+1)
	tagged = append(tagged, salt...)
	tagged = append(tagged, byte(typ))
	return argon2.IDKey(data, tagged, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyDigest compares a candidate digest against the expected one in
// constant time.
func VerifyDigest(data, salt []byte, typ DigestType, expected []byte) bool {
	got := Digest(data, salt, typ)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
