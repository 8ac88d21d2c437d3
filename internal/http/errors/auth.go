package errors

import (
	stderrors "errors"

	"github.com/kjun-ai/authgate/internal/auth"
	"github.com/kjun-ai/authgate/internal/domain/repository"
)

// authMappings se recorre en orden; el primero que matchea gana.
var authMappings = []struct {
	target error
	app    *AppError
}{
	{auth.ErrValidation, ErrMissingFields},
	{auth.ErrUnknownProvider, ErrUnknownProvider},
	{auth.ErrStateInvalid, ErrInvalidState},
	{auth.ErrUpstreamAuth, ErrUpstreamAuth},
	{auth.ErrUpstreamProfile, ErrUpstreamProfile},
	{auth.ErrTokenRevoked, ErrTokenRevoked},
	{auth.ErrTokenInvalid, ErrTokenInvalid},
	{auth.ErrRefreshInvalid, ErrRefreshInvalid},
	{auth.ErrUserStore, ErrUserStore},
	{auth.ErrSessionStore, ErrServiceUnavailable},
	{repository.ErrNotFound, ErrUserNotFound},
	{repository.ErrInvalidInput, ErrBadRequest},
	{repository.ErrConflict, ErrConflict},
	{repository.ErrUnavailable, ErrServiceUnavailable},
}

// FromAuthError traduce los errores del servicio de sesión y del repositorio
// de usuarios. ok=false si el error no es de ninguno de los dos.
func FromAuthError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	for _, m := range authMappings {
		if stderrors.Is(err, m.target) {
			return m.app.WithCause(err), true
		}
	}
	return nil, false
}
