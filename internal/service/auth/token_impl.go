package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
)

// MinSecretLength is the minimum HMAC key length accepted.
const MinSecretLength = 32

// HMACTokenCodec implements TokenCodec with HS256 signed JWTs.
type HMACTokenCodec struct {
	signingKey []byte
	lifetime   time.Duration
	timeFunc   func() time.Time // Injectable for testing
}

type jwtCustomClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Ensure HMACTokenCodec implements TokenCodec interface
var _ TokenCodec = (*HMACTokenCodec)(nil)

// NewTokenCodec creates a TokenCodec from the auth configuration.
func NewTokenCodec(cfg config.AuthConfig) (*HMACTokenCodec, error) {
	return NewHMACTokenCodec(cfg.JWTSecret, time.Duration(cfg.TokenLifetimeMinutes)*time.Minute, time.Now)
}

// NewHMACTokenCodec creates a codec with an explicit clock.
func NewHMACTokenCodec(secret string, lifetime time.Duration, now func() time.Time) (*HMACTokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &HMACTokenCodec{
		signingKey: []byte(secret),
		lifetime:   lifetime,
		timeFunc:   now,
	}, nil
}

// Issue implements TokenCodec.Issue
func (c *HMACTokenCodec) Issue(ctx context.Context, claims Claims) (*IssuedToken, error) {
	if claims.UserID <= 0 || claims.Email == "" {
		return nil, fmt.Errorf("token subject requires a user id and email")
	}

	now := c.timeFunc()
	expiresAt := now.Add(c.lifetime)
	jc := jwtCustomClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString(c.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign session token",
			"error", err,
			"user_id", claims.UserID)
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	// NumericDate has second precision; report what the token says.
	return &IssuedToken{Token: signed, ExpiresAt: jc.ExpiresAt.Time}, nil
}

// Verify implements TokenCodec.Verify
func (c *HMACTokenCodec) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := c.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token verification failed", "reason", verifyFailureReason(err))
		return nil, ErrInvalidToken
	}

	jc, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token verification failed", "reason", "invalid claims")
		return nil, ErrInvalidToken
	}
	if jc.UserID <= 0 || jc.Email == "" || jc.Subject != strconv.FormatInt(jc.UserID, 10) {
		log.Debug("token verification failed", "reason", "missing claims")
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    jc.UserID,
		Email:     jc.Email,
		IssuedAt:  jc.IssuedAt.Time,
		ExpiresAt: jc.ExpiresAt.Time,
		ID:        jc.ID,
	}, nil
}

// verifyFailureReason names the cause for debug logs only; callers always
// receive ErrInvalidToken.
func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "not yet valid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing claims"
	default:
		return "other"
	}
}
