// Package audit escribe eventos de seguridad (login, logout) como logs
// estructurados en el logger "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// Eventos conocidos.
const (
	EventLogin  = "auth.login"
	EventLogout = "auth.logout"
)

// Log escribe el evento con el logger del request (hereda request_id).
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append([]zap.Field{zap.String("event", event)}, fields...)...)
}
