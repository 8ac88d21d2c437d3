package auth

import (
	"context"
	"fmt"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/providers"
)

// Resolver maps a canonical profile to an internal user through the user store.
type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve finds or creates the user for (provider, ExternalID). Repeated
// calls return the same user with email, nickname and (when present) avatar
// refreshed.
func (r *Resolver) Resolve(ctx context.Context, provider types.Provider, p providers.CanonicalProfile) (*repository.User, error) {
	if p.ExternalID == "" {
		return nil, fmt.Errorf("%w: %s profile has no id", ErrUpstreamProfile, provider)
	}
	u, err := r.users.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider:  provider,
		OAuthID:   p.ExternalID,
		Email:     p.Email,
		Nickname:  p.DisplayName,
		AvatarURL: p.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserStore, err)
	}
	if u == nil || u.ID <= 0 {
		return nil, fmt.Errorf("%w: store returned no user id", ErrUserStore)
	}
	return u, nil
}
