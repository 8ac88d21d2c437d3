// Package memory implementa repository.UserRepository en proceso.
// Para desarrollo y tests; los datos se pierden al reiniciar.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
)

type providerKey struct {
	provider types.Provider
	oauthID  string
}

// UserRepo guarda usuarios en mapas protegidos por un mutex.
type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*repository.User
	byKey  map[providerKey]int64
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:  make(map[int64]*repository.User),
		byKey: make(map[providerKey]int64),
	}
}

func clone(u *repository.User) *repository.User {
	c := *u
	if u.AvatarURL != nil {
		a := *u.AvatarURL
		c.AvatarURL = &a
	}
	return &c
}

func (r *UserRepo) FindOrCreate(ctx context.Context, in repository.FindOrCreateInput) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !in.Provider.IsValid() || in.OAuthID == "" {
		return nil, repository.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	k := providerKey{in.Provider, in.OAuthID}
	if id, ok := r.byKey[k]; ok {
		u := r.byID[id]
		u.Email = in.Email
		u.Nickname = in.Nickname
		if in.AvatarURL != nil {
			a := *in.AvatarURL
			u.AvatarURL = &a
		}
		u.UpdatedAt = now
		return clone(u), nil
	}

	r.nextID++
	u := &repository.User{
		ID:        r.nextID,
		Email:     in.Email,
		Provider:  in.Provider,
		OAuthID:   in.OAuthID,
		Nickname:  in.Nickname,
		Role:      types.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.AvatarURL != nil {
		a := *in.AvatarURL
		u.AvatarURL = &a
	}
	r.byID[u.ID] = u
	r.byKey[k] = u.ID
	return clone(u), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepo) FindByProvider(ctx context.Context, provider types.Provider, oauthID string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[providerKey{provider, oauthID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepo) Ping(ctx context.Context) error { return ctx.Err() }
