// Package oauth contiene los DTOs de /oauth.
package oauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidUserID indica un userId que no es entero.
var ErrInvalidUserID = errors.New("invalid userId")

// FlexInt64 acepta 123 o "123". Null o ausente queda en Set=false.
type FlexInt64 struct {
	Value int64
	Set   bool
}

func (f *FlexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = FlexInt64{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidUserID
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexInt64{}
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ErrInvalidUserID
		}
		*f = FlexInt64{Value: v, Set: true}
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return ErrInvalidUserID
	}
	*f = FlexInt64{Value: v, Set: true}
	return nil
}

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// LoginURLResponse: POST|GET /oauth/{provider}/login
type LoginURLResponse struct {
	Success  bool   `json:"success"`
	LoginURL string `json:"loginUrl"`
}

// CodeLoginRequest: POST /oauth/{provider}
type CodeLoginRequest struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// UserInfo es el usuario resumido en la respuesta de login.
type UserInfo struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Nickname     string  `json:"nickname"`
	ProfileImage *string `json:"profileImage"`
	Provider     string  `json:"provider"`
	Role         string  `json:"role"`
}

// LoginResponse: sesión emitida tras un login.
type LoginResponse struct {
	Success      bool      `json:"success"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserInfo  `json:"user"`
}

// RefreshRequest: POST /oauth/refresh
type RefreshRequest struct {
	UserID       FlexInt64 `json:"userId"`
	RefreshToken string    `json:"refreshToken"`
}

// RefreshResponse: par rotado.
type RefreshResponse struct {
	Success      bool      `json:"success"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// LogoutRequest: POST /oauth/logout. AccessToken es opcional.
type LogoutRequest struct {
	UserID      FlexInt64 `json:"userId"`
	AccessToken string    `json:"accessToken,omitempty"`
}

// MessageResponse es la respuesta genérica {success, message}.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MeResponse: GET /oauth/me
type MeResponse struct {
	Success   bool      `json:"success"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProvidersResponse: GET /oauth/providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}
