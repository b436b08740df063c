package session

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
)

// TokenCodec signs and parses session tokens for the transport layer. HS256
// signing makes the {uid, expiration} pair tamper-evident on the wire; the
// Manager still owns validity and refresh.
type TokenCodec struct{ key []byte }

// NewTokenCodec constructs a codec with the given HMAC signing key.
func NewTokenCodec(key []byte) *TokenCodec { return &TokenCodec{key: key} }

// Encode signs s as a compact JWT.
func (c *TokenCodec) Encode(s model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(s.UID, 10),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies the signature and returns the embedded session. Expiry is
// deliberately not enforced here: the Manager reports expired tokens as
// ErrNoSession rather than hiding them behind a parse failure.
func (c *TokenCodec) Decode(raw string) (model.Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return model.Session{}, errs.ErrNoSession
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ExpiresAt == nil {
		return model.Session{}, errs.ErrNoSession
	}
	return model.Session{UID: uid, ExpiresAt: claims.ExpiresAt.Time}, nil
}
