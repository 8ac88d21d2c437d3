package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kjun-ai/authgate/internal/cache"
	"github.com/kjun-ai/authgate/internal/jwt"
	"github.com/kjun-ai/authgate/internal/metrics"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

const (
	revokedKeyPrefix = "revoked:"
	revokedSentinel  = "true"
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// RevocationStore is the access token blacklist. An entry lives exactly as
// long as the token it revokes.
type RevocationStore struct {
	cache    cache.Client
	verifier TokenVerifier
	now      func() time.Time
}

// NewRevocationStore creates a RevocationStore.
func NewRevocationStore(c cache.Client, v TokenVerifier) *RevocationStore {
	return &RevocationStore{cache: c, verifier: v, now: time.Now}
}

func revokedKey(c *jwt.Claims) (string, bool) {
	k, ok := c.RevocationKey()
	if !ok {
		return "", false
	}
	return revokedKeyPrefix + k, true
}

// Revoke blacklists token until its natural expiry. Tokens that do not
// verify (malformed, foreign, already expired) are ignored. Only a store
// write failure is returned.
func (s *RevocationStore) Revoke(ctx context.Context, token string) error {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		metrics.RecordRevocationParseFailure("revoke")
		logger.From(ctx).Debug("revoke skipped: token does not verify",
			logger.Component("auth.revocation_store"), logger.Err(err))
		return nil
	}
	return s.RevokeClaims(ctx, claims)
}

// RevokeClaims blacklists already verified claims.
func (s *RevocationStore) RevokeClaims(ctx context.Context, claims *jwt.Claims) error {
	key, ok := revokedKey(claims)
	if !ok {
		logger.From(ctx).Debug("revoke skipped: token has neither jti nor sub",
			logger.Component("auth.revocation_store"))
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now()).Truncate(time.Second)
	if remaining <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, key, revokedSentinel, remaining); err != nil {
		return fmt.Errorf("revocation: store: %w", err)
	}
	return nil
}

// IsRevoked reports whether token is blacklisted. A token that does not
// verify is not this store's concern and yields false, as does a store error.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) bool {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		metrics.RecordRevocationParseFailure("check")
		return false
	}
	revoked, err := s.IsRevokedClaims(ctx, claims)
	if err != nil {
		logger.From(ctx).Warn("revocation lookup failed",
			logger.Component("auth.revocation_store"), logger.Err(err))
		return false
	}
	return revoked
}

// IsRevokedClaims checks verified claims and surfaces store errors so that
// callers guarding access can fail closed.
func (s *RevocationStore) IsRevokedClaims(ctx context.Context, claims *jwt.Claims) (bool, error) {
	key, ok := revokedKey(claims)
	if !ok {
		return false, nil
	}
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("revocation: lookup: %w", err)
	}
	return ok, nil
}
