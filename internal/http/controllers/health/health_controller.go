// Package health contiene el controller para health checks.
package health

import (
	"net/http"
	"time"

	dto "github.com/kjun-ai/authgate/internal/http/dto/health"
	"github.com/kjun-ai/authgate/internal/http/helpers"
	svc "github.com/kjun-ai/authgate/internal/http/services/health"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service     svc.HealthService
	serviceName string
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService, serviceName string) *HealthController {
	return &HealthController{service: service, serviceName: serviceName}
}

// Root maneja GET /
func (c *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.RootResponse{
		Status:    "ok",
		Service:   c.serviceName,
		Timestamp: time.Now().UTC(),
		Message:   c.serviceName + " is running",
	})
}

// Status maneja GET /api/gateway/status y GET /readyz.
// 200 si todas las dependencias responden, 503 si no.
func (c *HealthController) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Status"))

	response := c.service.Check(ctx)

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}

	log.Debug("health check completed",
		logger.String("status", response.Status),
		logger.Int("services", len(response.Services)),
	)
	helpers.WriteJSON(w, status, response)
}
