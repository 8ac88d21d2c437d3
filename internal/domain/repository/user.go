package repository

import (
	"context"
	"time"

	"github.com/kjun-ai/authgate/internal/domain/types"
)

// User es el registro canónico de un usuario.
// (Provider, OAuthID) es único.
type User struct {
	ID        int64
	Email     string
	Provider  types.Provider
	OAuthID   string
	Nickname  string
	AvatarURL *string
	Role      types.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindOrCreateInput contiene los datos de un login social ya normalizados.
type FindOrCreateInput struct {
	Provider  types.Provider
	OAuthID   string
	Email     string
	Nickname  string
	AvatarURL *string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// FindOrCreate crea el usuario si (Provider, OAuthID) no existe; si existe
	// actualiza email y nickname siempre, y el avatar solo si no es nil.
	FindOrCreate(ctx context.Context, in FindOrCreateInput) (*User, error)

	// FindByID busca un usuario por ID.
	// Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByProvider busca por (provider, oauthID).
	// Retorna ErrNotFound si no existe.
	FindByProvider(ctx context.Context, provider types.Provider, oauthID string) (*User, error)

	// Ping verifica que el store responde.
	Ping(ctx context.Context) error
}
