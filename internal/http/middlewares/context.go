package middlewares

import (
	"context"

	"github.com/kjun-ai/authgate/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims verificadas en el contexto.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims obtiene las claims del contexto.
// Retorna nil si RequireAuth no se aplicó.
func GetClaims(ctx context.Context) *jwt.Claims {
	if c, ok := ctx.Value(ctxClaimsKey).(*jwt.Claims); ok {
		return c
	}
	return nil
}

// GetUserID obtiene el user ID de las claims; 0 si no hay.
func GetUserID(ctx context.Context) int64 {
	if c := GetClaims(ctx); c != nil {
		return c.UserID
	}
	return 0
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
