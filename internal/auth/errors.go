package auth

import (
	"errors"

	"github.com/kjun-ai/authgate/internal/jwt"
	"github.com/kjun-ai/authgate/internal/providers"
)

// Error kinds returned by Service. Callers match them with errors.Is.
var (
	ErrUpstreamAuth    = providers.ErrUpstreamAuth
	ErrUpstreamProfile = providers.ErrUpstreamProfile
	ErrTokenInvalid    = jwt.ErrTokenInvalid

	ErrUserStore       = errors.New("user store failed")
	ErrRefreshInvalid  = errors.New("refresh token invalid")
	ErrValidation      = errors.New("validation failed")
	ErrTokenRevoked    = errors.New("token revoked")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrStateInvalid    = errors.New("oauth state invalid")

	// ErrSessionStore means the TTL store could not be written or read where
	// the flow cannot degrade (refresh write at login, revocation check).
	ErrSessionStore = errors.New("session store unavailable")
)
