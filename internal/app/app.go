// Package app arma el servicio a partir de la configuración: stores,
// proveedores, servicio de sesión y handler HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/kjun-ai/authgate/internal/auth"
	"github.com/kjun-ai/authgate/internal/cache"
	"github.com/kjun-ai/authgate/internal/config"
	"github.com/kjun-ai/authgate/internal/domain/repository"
	healthctrl "github.com/kjun-ai/authgate/internal/http/controllers/health"
	oauthctrl "github.com/kjun-ai/authgate/internal/http/controllers/oauth"
	usersctrl "github.com/kjun-ai/authgate/internal/http/controllers/users"
	"github.com/kjun-ai/authgate/internal/http/router"
	healthsvc "github.com/kjun-ai/authgate/internal/http/services/health"
	"github.com/kjun-ai/authgate/internal/jwt"
	"github.com/kjun-ai/authgate/internal/metrics"
	"github.com/kjun-ai/authgate/internal/observability/logger"
	"github.com/kjun-ai/authgate/internal/providers"
	"github.com/kjun-ai/authgate/internal/providers/google"
	"github.com/kjun-ai/authgate/internal/providers/kakao"
	"github.com/kjun-ai/authgate/internal/providers/naver"
	"github.com/kjun-ai/authgate/internal/rate"
	"github.com/kjun-ai/authgate/internal/store/memory"
	"github.com/kjun-ai/authgate/internal/store/pg"
	"github.com/kjun-ai/authgate/internal/store/userapi"
)

// ServiceName aparece en GET / y en los logs.
const ServiceName = "authgate"

// App es el servicio armado.
type App struct {
	Handler   http.Handler
	Service   auth.Service
	Issuer    *jwt.Issuer
	Users     repository.UserRepository
	Cache     cache.Client
	Providers *providers.Registry
	Limiter   rate.Limiter

	closers []func() error
}

// Options permite a los tests inyectar piezas.
type Options struct {
	// Registerer para métricas; nil usa el registry global.
	Registerer prometheus.Registerer
	// Cache reemplaza al construido desde cfg.Cache.
	Cache cache.Client
	// Users reemplaza al repositorio construido desde cfg.Storage.
	Users repository.UserRepository
}

// Build arma todo. Si falla, libera lo que alcanzó a abrir.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	log := logger.L().With(logger.Component("app"))
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	metricsHandler, err := metrics.Register(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	// 1) TTL store
	a.Cache = opts.Cache
	if a.Cache == nil {
		a.Cache, err = cache.New(cache.Config{
			Driver:   cfg.Cache.Kind,
			Host:     cfg.Cache.Host,
			Port:     cfg.Cache.Port,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("app: cache: %w", err)
		}
		a.closers = append(a.closers, a.Cache.Close)
	}

	// 2) usuarios
	a.Users = opts.Users
	if a.Users == nil {
		if a.Users, err = a.buildUsers(ctx, cfg); err != nil {
			return nil, err
		}
	}

	// 3) tokens y stores de sesión
	a.Issuer, err = jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, jwt.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return nil, fmt.Errorf("app: issuer: %w", err)
	}
	refresh := auth.NewRefreshStore(a.Cache, cfg.JWT.RefreshTTL)
	revocations := auth.NewRevocationStore(a.Cache, a.Issuer)
	states := auth.NewStateStore(a.Cache, 0)

	// 4) proveedores
	a.Providers, err = BuildProviders(cfg)
	if err != nil {
		return nil, err
	}
	if len(a.Providers.Available()) == 0 {
		log.Warn("no oauth provider configured")
	}

	a.Service = auth.NewService(auth.Deps{
		Providers:    a.Providers,
		Users:        a.Users,
		Issuer:       a.Issuer,
		Refresh:      refresh,
		Revocations:  revocations,
		States:       states,
		CheckState:   cfg.OAuth.CheckState,
		StoreTimeout: cfg.Timeouts.Store,
	})

	// 5) HTTP
	limiter, err := a.buildLimiter(cfg)
	if err != nil {
		return nil, err
	}
	a.Limiter = limiter

	health := healthsvc.NewHealthService(healthsvc.Deps{
		Checks: []healthsvc.Check{
			{Name: cacheCheckName(cfg.Cache.Kind), Driver: cfg.Cache.Kind, Ping: a.Cache.Ping},
			{Name: "database", Driver: cfg.Storage.Driver, Ping: a.Users.Ping},
		},
	})

	a.Handler = router.New(router.Deps{
		OAuth:         oauthctrl.NewController(a.Service, a.Providers.Available, cfg.OAuth.FrontendURL),
		Users:         usersctrl.NewController(a.Users),
		Health:        healthctrl.NewHealthController(health, ServiceName),
		Authenticator: a.Service,
		RateLimiter:   limiter,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Metrics:       metricsHandler,
	})

	log.Info("app ready",
		logger.String("cache", cfg.Cache.Kind),
		logger.String("storage", cfg.Storage.Driver),
		logger.Int("providers", len(a.Providers.Available())),
	)
	return a, nil
}

func cacheCheckName(kind string) string {
	if kind == "redis" {
		return "redis"
	}
	return "cache"
}

func (a *App) buildUsers(ctx context.Context, cfg *config.Config) (repository.UserRepository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewUserRepo(), nil
	case "pg", "postgres":
		if cfg.Storage.Migrate {
			if err := pg.RunMigrations(cfg.Storage.DSN); err != nil {
				return nil, fmt.Errorf("app: %w", err)
			}
		}
		st, err := pg.New(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, func() error { st.Close(); return nil })
		return st.Users(), nil
	case "http":
		return userapi.New(cfg.Storage.UserServiceURL, cfg.Timeouts.Store), nil
	default:
		return nil, fmt.Errorf("app: storage driver %q not supported", cfg.Storage.Driver)
	}
}

func (a *App) buildLimiter(cfg *config.Config) (rate.Limiter, error) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	if cfg.Rate.Backend == "redis" {
		raw, ok := a.Cache.(interface{ Raw() *rdb.Client })
		if !ok {
			return nil, errors.New("app: rate backend redis requires the redis cache")
		}
		return rate.NewRedisLimiter(raw.Raw(), cfg.Cache.Prefix+":rl:", cfg.Rate.MaxRequests, cfg.Rate.Window), nil
	}
	lim := rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
	// un bucket sin uso por 2 ventanas ya está lleno; se puede descartar
	stop := lim.StartJanitor(cfg.Rate.Window, 2*cfg.Rate.Window)
	a.closers = append(a.closers, func() error { stop(); return nil })
	return lim, nil
}

// BuildProviders registra los proveedores que tienen client_id.
func BuildProviders(cfg *config.Config) (*providers.Registry, error) {
	reg := providers.NewRegistry()
	for _, entry := range []struct {
		name    string
		factory providers.Factory
		pc      config.ProviderConfig
	}{
		{"kakao", kakao.New, cfg.OAuth.Kakao},
		{"naver", naver.New, cfg.OAuth.Naver},
		{"google", google.New, cfg.OAuth.Google},
	} {
		if !entry.pc.Enabled() {
			continue
		}
		if err := reg.Register(entry.factory, providers.Config{
			ClientID:     entry.pc.ClientID,
			ClientSecret: entry.pc.ClientSecret,
			RedirectURI:  entry.pc.RedirectURI,
			Scopes:       entry.pc.Scopes,
			AuthURL:      entry.pc.AuthURL,
			TokenURL:     entry.pc.TokenURL,
			UserInfoURL:  entry.pc.UserInfoURL,
			HTTPTimeout:  cfg.Timeouts.Upstream,
		}); err != nil {
			return nil, fmt.Errorf("app: provider %s: %w", entry.name, err)
		}
	}
	return reg, nil
}

// Close libera pools y conexiones en orden inverso.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
