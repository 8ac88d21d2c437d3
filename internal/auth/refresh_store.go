package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kjun-ai/authgate/internal/cache"
	"github.com/kjun-ai/authgate/internal/observability/logger"
	tokens "github.com/kjun-ai/authgate/internal/security/token"
)

// DefaultRefreshTTL is the lifetime of a refresh credential.
const DefaultRefreshTTL = 7 * 24 * time.Hour

const refreshKeyPrefix = "refresh:"

// RefreshStore keeps at most one refresh credential per user under
// refresh:{userId}. Writing a new credential replaces the previous one, so
// a user has a single live session.
//
// Only sha256(credential) is stored; the plaintext is returned once.
type RefreshStore struct {
	cache cache.Client
	ttl   time.Duration
}

// NewRefreshStore creates a RefreshStore. A zero ttl means DefaultRefreshTTL.
func NewRefreshStore(c cache.Client, ttl time.Duration) *RefreshStore {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &RefreshStore{cache: c, ttl: ttl}
}

// TTL returns the configured credential lifetime.
func (s *RefreshStore) TTL() time.Duration { return s.ttl }

func refreshKey(userID int64) string {
	return refreshKeyPrefix + strconv.FormatInt(userID, 10)
}

// IssueFor generates a fresh credential and overwrites any previous one.
func (s *RefreshStore) IssueFor(ctx context.Context, userID int64) (string, error) {
	cred, err := tokens.GenerateOpaqueToken(tokens.RefreshBytes)
	if err != nil {
		return "", fmt.Errorf("refresh: generate: %w", err)
	}
	if err := s.cache.Set(ctx, refreshKey(userID), tokens.SHA256Base64URL(cred), s.ttl); err != nil {
		return "", fmt.Errorf("refresh: store: %w", err)
	}
	return cred, nil
}

// Validate reports whether presented is the live credential of userID.
// It never fails: a missing record, a mismatch or a store error all yield false.
func (s *RefreshStore) Validate(ctx context.Context, userID int64, presented string) bool {
	if presented == "" {
		return false
	}
	stored, err := s.cache.Get(ctx, refreshKey(userID))
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(ctx).Warn("refresh lookup failed",
				logger.Component("auth.refresh_store"), logger.UserID(userID), logger.Err(err))
		}
		return false
	}
	return tokens.Equal(stored, tokens.SHA256Base64URL(presented))
}

// Rotate replaces the credential of userID. The previous credential stops
// validating as soon as the single overwrite lands.
func (s *RefreshStore) Rotate(ctx context.Context, userID int64) (string, error) {
	return s.IssueFor(ctx, userID)
}

// RevokeFor deletes the credential of userID. Deleting a missing record is not an error.
func (s *RefreshStore) RevokeFor(ctx context.Context, userID int64) error {
	if err := s.cache.Delete(ctx, refreshKey(userID)); err != nil {
		return fmt.Errorf("refresh: delete: %w", err)
	}
	return nil
}
