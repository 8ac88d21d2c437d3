package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kjun-ai/authgate/internal/cache"
	tokens "github.com/kjun-ai/authgate/internal/security/token"
)

// DefaultStateTTL bounds how long a login may take between redirect and callback.
const DefaultStateTTL = 10 * time.Minute

const stateKeyPrefix = "state:"

// StateStore issues single-use OAuth state values.
type StateStore struct {
	cache cache.Client
	ttl   time.Duration
}

func NewStateStore(c cache.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{cache: c, ttl: ttl}
}

// Issue creates and stores a random state.
func (s *StateStore) Issue(ctx context.Context) (string, error) {
	st, err := tokens.GenerateOpaqueToken(24)
	if err != nil {
		return "", fmt.Errorf("state: generate: %w", err)
	}
	if err := s.cache.Set(ctx, stateKeyPrefix+st, "1", s.ttl); err != nil {
		return "", fmt.Errorf("state: store: %w", err)
	}
	return st, nil
}

// Consume reports whether state was issued and not yet used, and deletes it.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	key := stateKeyPrefix + state
	if _, err := s.cache.Get(ctx, key); err != nil {
		if cache.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("state: lookup: %w", err)
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("state: delete: %w", err)
	}
	return true, nil
}
