package auth

import (
	"context"
	"time"
)

// TokenCodec issues and verifies session tokens.
type TokenCodec interface {
	// Issue signs a token for the subject. Only UserID and Email are read
	// from claims; the time bounds and token id are assigned by the codec.
	Issue(ctx context.Context, claims Claims) (*IssuedToken, error)

	// Verify checks signature and expiry and returns the embedded claims.
	// Every failure is reported as ErrInvalidToken.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Claims are the identity facts carried by a session token.
type Claims struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// IssuedToken is a signed token and its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
