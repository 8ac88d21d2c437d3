package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kjun-ai/authgate/internal/auth"
	httperrors "github.com/kjun-ai/authgate/internal/http/errors"
	"github.com/kjun-ai/authgate/internal/jwt"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// Authenticator verifica un access token y consulta la lista de revocación.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	return raw, raw != ""
}

// RequireAuth valida Authorization: Bearer <JWT> (firma, expiración y
// revocación) y guarda las claims en el contexto. Responde 401 si falla.
func RequireAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			claims, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionStore) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				}
				logger.From(r.Context()).Debug("bearer rejected", logger.Op("RequireAuth"), logger.Err(err))
				httperrors.WriteError(w, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
