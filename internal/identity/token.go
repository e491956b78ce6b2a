package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies the HS256 session tokens handed to the
// mobile client.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	// now is swappable in tests
	now func() time.Time
}

// NewTokenIssuer creates a token issuer. Panics on an empty secret so a
// misconfigured server cannot mint unverifiable tokens.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		panic("identity: jwt secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue mints a signed token for the account. The jti claim identifies the
// token for revocation on sign-out.
func (ti *TokenIssuer) Issue(userID string) (string, *jwt.RegisteredClaims, error) {
	now := ti.now().UTC()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   userID,
		Issuer:    ti.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", nil, fmt.Errorf("identity: failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, expiry, and issuer of a presented token.
func (ti *TokenIssuer) Parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithTimeFunc(func() time.Time { return ti.now() }),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
