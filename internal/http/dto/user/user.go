// Package user contiene DTOs de la API de usuarios (/api/users).
package user

import (
	"time"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
)

// Model es la representación pública de un usuario.
type Model struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	OAuthProvider   string    `json:"oauthProvider"`
	OAuthID         string    `json:"oauthId"`
	Nickname        string    `json:"nickname"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

// FromUser convierte el registro de dominio a su forma pública.
func FromUser(u *repository.User) Model {
	return Model{
		ID:              u.ID,
		Email:           u.Email,
		OAuthProvider:   string(u.Provider),
		OAuthID:         u.OAuthID,
		Nickname:        u.Nickname,
		ProfileImageURL: u.AvatarURL,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// ToUser convierte la forma pública al registro de dominio.
func (m Model) ToUser() *repository.User {
	role := types.Role(m.Role)
	if !role.IsValid() {
		role = types.RoleUser
	}
	return &repository.User{
		ID:        m.ID,
		Email:     m.Email,
		Provider:  types.Provider(m.OAuthProvider),
		OAuthID:   m.OAuthID,
		Nickname:  m.Nickname,
		AvatarURL: m.ProfileImageURL,
		Role:      role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SaveRequest es el body de POST /api/users/oauth.
type SaveRequest struct {
	Provider        string  `json:"provider"`
	OAuthID         string  `json:"oauthId"`
	Email           string  `json:"email"`
	Nickname        string  `json:"nickname"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

// Response envuelve las respuestas de la API de usuarios.
type Response struct {
	Success bool   `json:"success"`
	User    *Model `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}
