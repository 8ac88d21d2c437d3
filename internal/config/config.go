package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kjun-ai/authgate/internal/validation"
)

// MinJWTSecretLen es el largo mínimo del secreto HS256.
const MinJWTSecretLen = 32

// Config es inmutable una vez cargada; se pasa explícitamente a quien la use.
type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env" env:"APP_ENV"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr" env:"SERVER_ADDR"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"SERVER_CORS_ALLOWED_ORIGINS" envSeparator:","`
		ReadTimeout        time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout       time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	// Storage define dónde viven los usuarios.
	Storage struct {
		// pg | memory | http
		Driver   string `yaml:"driver" env:"STORAGE_DRIVER"`
		DSN      string `yaml:"dsn" env:"STORAGE_DSN"`
		Migrate  bool   `yaml:"migrate" env:"STORAGE_MIGRATE"`
		Postgres struct {
			MaxConns        int32         `yaml:"max_conns" env:"PG_MAX_CONNS"`
			MinConns        int32         `yaml:"min_conns" env:"PG_MIN_CONNS"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME"`
		} `yaml:"postgres"`
		// UserServiceURL se usa con driver=http.
		UserServiceURL string `yaml:"user_service_url" env:"USER_SERVICE_URL"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind     string `yaml:"kind" env:"CACHE_KIND"`
		Host     string `yaml:"host" env:"REDIS_HOST"`
		Port     int    `yaml:"port" env:"REDIS_PORT"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		Prefix   string `yaml:"prefix" env:"CACHE_PREFIX"`
	} `yaml:"cache"`

	JWT struct {
		Secret     string        `yaml:"secret" env:"JWT_SECRET"`
		Issuer     string        `yaml:"issuer" env:"JWT_ISSUER"`
		AccessTTL  time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
		RefreshTTL time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL"`
	} `yaml:"jwt"`

	Timeouts struct {
		Store    time.Duration `yaml:"store" env:"STORE_TIMEOUT"`
		Upstream time.Duration `yaml:"upstream" env:"UPSTREAM_TIMEOUT"`
	} `yaml:"timeouts"`

	Rate struct {
		Enabled bool `yaml:"enabled" env:"RATE_ENABLED"`
		// memory | redis (redis exige cache.kind=redis)
		Backend     string        `yaml:"backend" env:"RATE_BACKEND"`
		Window      time.Duration `yaml:"window" env:"RATE_WINDOW"`
		MaxRequests int           `yaml:"max_requests" env:"RATE_MAX_REQUESTS"`
	} `yaml:"rate"`

	OAuth struct {
		// FrontendURL es la base de las redirecciones del callback:
		// {url}/oauth/{provider}/success?... y {url}/auth/{provider}/error?error=...
		FrontendURL string `yaml:"frontend_url" env:"FRONT_LOGIN_CALLBACK_URL"`
		CheckState  bool   `yaml:"check_state" env:"OAUTH_CHECK_STATE"`

		Kakao  ProviderConfig `yaml:"kakao" envPrefix:"KAKAO_"`
		Naver  ProviderConfig `yaml:"naver" envPrefix:"NAVER_"`
		Google ProviderConfig `yaml:"google" envPrefix:"GOOGLE_"`
	} `yaml:"oauth"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// ProviderConfig: credenciales y overrides de endpoints por proveedor.
// Un proveedor sin client_id queda deshabilitado.
type ProviderConfig struct {
	ClientID     string   `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURI  string   `yaml:"redirect_uri" env:"REDIRECT_URI"`
	Scopes       []string `yaml:"scopes" env:"SCOPES" envSeparator:","`
	AuthURL      string   `yaml:"auth_url" env:"AUTH_URL"`
	TokenURL     string   `yaml:"token_url" env:"TOKEN_URL"`
	UserInfoURL  string   `yaml:"user_info_url" env:"USER_INFO_URL"`
}

// Enabled indica si el proveedor tiene credenciales.
func (p ProviderConfig) Enabled() bool {
	return strings.TrimSpace(p.ClientID) != ""
}

// Load lee el YAML (si path no es vacío), aplica defaults, pisa con env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()

	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults completa sólo lo que quedó vacío.
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Host == "" {
		c.Cache.Host = "localhost"
	}
	if c.Cache.Port == 0 {
		c.Cache.Port = 6379
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "auth"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "authgate"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = time.Hour
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.Timeouts.Store == 0 {
		c.Timeouts.Store = 3 * time.Second
	}
	if c.Timeouts.Upstream == 0 {
		c.Timeouts.Upstream = 5 * time.Second
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.OAuth.FrontendURL == "" {
		c.OAuth.FrontendURL = "http://localhost:3000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// IsProd indica si corremos en producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod") || strings.EqualFold(c.App.Env, "production")
}

// Validate revisa los valores críticos. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.Secret) < MinJWTSecretLen {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d bytes", MinJWTSecretLen))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	} else if c.JWT.AccessTTL%time.Second != 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be a whole number of seconds"))
	}
	if c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt.refresh_ttl must be positive"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "pg", "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for driver pg"))
		}
	case "http":
		if c.Storage.UserServiceURL == "" {
			errs = append(errs, errors.New("storage.user_service_url is required for driver http"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported", c.Cache.Kind))
	}

	switch c.Rate.Backend {
	case "memory":
	case "redis":
		if c.Cache.Kind != "redis" {
			errs = append(errs, errors.New("rate.backend redis requires cache.kind redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("rate.backend %q not supported", c.Rate.Backend))
	}
	if c.Rate.Enabled && (c.Rate.MaxRequests <= 0 || c.Rate.Window <= 0) {
		errs = append(errs, errors.New("rate.max_requests and rate.window must be positive"))
	}

	if c.Timeouts.Store <= 0 || c.Timeouts.Upstream <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}

	for name, p := range c.Providers() {
		if !p.Enabled() {
			continue
		}
		if p.RedirectURI == "" {
			errs = append(errs, fmt.Errorf("oauth.%s.redirect_uri is required", name))
		}
		if bad := validation.InvalidScopes(p.Scopes); len(bad) > 0 {
			errs = append(errs, fmt.Errorf("oauth.%s.scopes: invalid %q", name, bad))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// Providers devuelve los proveedores por slug.
func (c *Config) Providers() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"kakao":  c.OAuth.Kakao,
		"naver":  c.OAuth.Naver,
		"google": c.OAuth.Google,
	}
}
