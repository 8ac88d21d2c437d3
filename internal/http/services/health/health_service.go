// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	dto "github.com/kjun-ai/authgate/internal/http/dto/health"
	"github.com/kjun-ai/authgate/internal/observability/logger"
)

// DefaultCheckTimeout acota cada ping.
const DefaultCheckTimeout = 2 * time.Second

// Check es una dependencia a verificar (cache, base de usuarios).
type Check struct {
	Name   string
	Driver string
	Ping   func(ctx context.Context) error
}

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.StatusResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Checks  []Check
	Timeout time.Duration
	Now     func() time.Time
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultCheckTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &healthService{deps: deps}
}

const componentHealth = "health"

// Check corre todos los pings en paralelo. Un ping fallido marca
// el estado global como "unhealthy" pero no corta a los demás.
func (s *healthService) Check(ctx context.Context) dto.StatusResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.StatusResponse{
		Status:    "healthy",
		Timestamp: s.deps.Now().UTC(),
		Services:  make(map[string]dto.ServiceStatus, len(s.deps.Checks)),
		Version:   os.Getenv("SERVICE_VERSION"),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.deps.Checks {
		c := c
		g.Go(func() error {
			st := s.run(gctx, c)
			mu.Lock()
			response.Services[c.Name] = st
			mu.Unlock()
			if !st.Connected {
				log.Warn("dependency unavailable", logger.Component(c.Name), logger.String("error", st.Error))
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, st := range response.Services {
		if !st.Connected {
			response.Status = "unhealthy"
			break
		}
	}
	return response
}

func (s *healthService) run(ctx context.Context, c Check) (st dto.ServiceStatus) {
	st.Driver = c.Driver
	if c.Ping == nil {
		st.Message = fmt.Sprintf("%s not configured", c.Name)
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			st.Connected = false
			st.Message = fmt.Sprintf("%s check panicked", c.Name)
			st.Error = fmt.Sprint(r)
		}
	}()
	err := c.Ping(ctx)
	st.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		st.Message = fmt.Sprintf("%s connection failed", c.Name)
		st.Error = err.Error()
		return st
	}
	st.Connected = true
	st.Message = fmt.Sprintf("%s connection ok", c.Name)
	return st
}
