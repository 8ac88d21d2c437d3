// Package auth is the session engine: social login, access token issuance,
// refresh rotation, logout and revocation.
//
// Login:   code -> provider exchange -> profile -> user -> access token -> refresh write
// Refresh: (userId, refresh) -> validate -> user lookup -> access token -> rotate
// Logout:  (userId, access?) -> delete refresh -> best-effort revoke
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kjun-ai/authgate/internal/audit"
	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/jwt"
	"github.com/kjun-ai/authgate/internal/metrics"
	"github.com/kjun-ai/authgate/internal/observability/logger"
	"github.com/kjun-ai/authgate/internal/providers"
)

// DefaultStoreTimeout bounds each call to the TTL store and the user store.
const DefaultStoreTimeout = 3 * time.Second

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *repository.User
}

// RefreshResult is returned by a successful refresh.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Service defines the session operations.
type Service interface {
	// LoginURL builds the provider authorization URL, issuing a state when
	// the provider requires one.
	LoginURL(ctx context.Context, provider types.Provider) (string, error)
	Login(ctx context.Context, provider types.Provider, code, state string) (*LoginResult, error)
	Refresh(ctx context.Context, userID int64, refreshToken string) (*RefreshResult, error)
	// Logout always succeeds once the input is valid.
	Logout(ctx context.Context, userID int64, accessToken string) error
	// Authenticate verifies the token and rejects revoked ones.
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

// Deps contains dependencies for the session service.
type Deps struct {
	Providers   *providers.Registry
	Users       repository.UserRepository
	Issuer      *jwt.Issuer
	Refresh     *RefreshStore
	Revocations *RevocationStore
	States      *StateStore

	// CheckState enforces single-use state for providers that require it.
	CheckState   bool
	StoreTimeout time.Duration
}

type service struct {
	deps     Deps
	resolver *Resolver
}

// NewService creates the session service.
func NewService(deps Deps) Service {
	if deps.StoreTimeout <= 0 {
		deps.StoreTimeout = DefaultStoreTimeout
	}
	return &service{deps: deps, resolver: NewResolver(deps.Users)}
}

func (s *service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.deps.StoreTimeout)
}

func (s *service) provider(name types.Provider) (providers.Provider, error) {
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	p, err := s.deps.Providers.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownProvider, err)
	}
	return p, nil
}

func (s *service) LoginURL(ctx context.Context, name types.Provider) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	var state string
	if p.RequiresState() && s.deps.States != nil {
		sctx, cancel := s.bounded(ctx)
		defer cancel()
		if state, err = s.deps.States.Issue(sctx); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSessionStore, err)
		}
	}
	return p.AuthorizeURL(state), nil
}

func (s *service) Login(ctx context.Context, name types.Provider, code, state string) (res *LoginResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.session"),
		logger.Op("Login"),
		logger.Provider(string(name)),
	)
	defer func() {
		if err != nil {
			metrics.RecordLogin(string(name), "error")
			log.Info("login failed", logger.Err(err))
			return
		}
		metrics.RecordLogin(string(name), "ok")
	}()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrValidation)
	}
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}

	if p.RequiresState() && s.deps.CheckState && s.deps.States != nil {
		sctx, cancel := s.bounded(ctx)
		ok, serr := s.deps.States.Consume(sctx, state)
		cancel()
		if serr != nil {
			return nil, fmt.Errorf("%w: %w", ErrSessionStore, serr)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, ErrStateInvalid)
		}
	}

	tok, err := p.Exchange(ctx, code, state)
	if err != nil {
		return nil, err
	}
	profile, err := p.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	canonical := profile.Normalize()

	uctx, cancel := s.bounded(ctx)
	user, err := s.resolver.Resolve(uctx, name, canonical)
	cancel()
	if err != nil {
		return nil, err
	}
	log = log.With(logger.UserID(user.ID))

	at, err := s.deps.Issuer.Issue(user.ID, user.Email, user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	rctx, cancel := s.bounded(ctx)
	refresh, err := s.deps.Refresh.IssueFor(rctx, user.ID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	log.Info("login ok", logger.TokenID(at.TokenID))
	audit.Log(ctx, audit.EventLogin,
		logger.Provider(string(name)),
		logger.UserID(user.ID),
		logger.Email(user.Email),
		logger.TokenID(at.TokenID),
	)
	return &LoginResult{
		AccessToken:  at.Token,
		RefreshToken: refresh,
		ExpiresAt:    at.ExpiresAt,
		User:         user,
	}, nil
}

func (s *service) Refresh(ctx context.Context, userID int64, refreshToken string) (*RefreshResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.session"),
		logger.Op("Refresh"),
		logger.UserID(userID),
	)

	refreshToken = strings.TrimSpace(refreshToken)
	if userID <= 0 || refreshToken == "" {
		metrics.RecordRefresh("invalid")
		return nil, fmt.Errorf("%w: userId and refreshToken are required", ErrValidation)
	}

	vctx, cancel := s.bounded(ctx)
	valid := s.deps.Refresh.Validate(vctx, userID, refreshToken)
	cancel()
	if !valid {
		metrics.RecordRefresh("invalid")
		log.Debug("refresh rejected")
		return nil, ErrRefreshInvalid
	}

	uctx, cancel := s.bounded(ctx)
	user, err := s.deps.Users.FindByID(uctx, userID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// the user is gone; drop the orphan credential
			dctx, dcancel := s.bounded(ctx)
			_ = s.deps.Refresh.RevokeFor(dctx, userID)
			dcancel()
			metrics.RecordRefresh("invalid")
			return nil, ErrRefreshInvalid
		}
		metrics.RecordRefresh("error")
		return nil, fmt.Errorf("%w: %w", ErrUserStore, err)
	}

	at, err := s.deps.Issuer.Issue(user.ID, user.Email, user.Nickname)
	if err != nil {
		metrics.RecordRefresh("error")
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	rctx, cancel := s.bounded(ctx)
	next, err := s.deps.Refresh.Rotate(rctx, userID)
	cancel()
	if err != nil {
		metrics.RecordRefresh("error")
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	metrics.RecordRefresh("ok")
	log.Debug("refresh ok", logger.TokenID(at.TokenID))
	return &RefreshResult{
		AccessToken:  at.Token,
		RefreshToken: next,
		ExpiresAt:    at.ExpiresAt,
	}, nil
}

func (s *service) Logout(ctx context.Context, userID int64, accessToken string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.session"),
		logger.Op("Logout"),
		logger.UserID(userID),
	)

	if userID <= 0 {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}

	dctx, cancel := s.bounded(ctx)
	if err := s.deps.Refresh.RevokeFor(dctx, userID); err != nil {
		// Log but don't fail - logout is best-effort
		log.Warn("refresh delete failed", logger.Err(err))
	}
	cancel()

	if accessToken = strings.TrimSpace(accessToken); accessToken != "" {
		rctx, cancel := s.bounded(ctx)
		if err := s.deps.Revocations.Revoke(rctx, accessToken); err != nil {
			log.Warn("access token revoke failed", logger.Err(err))
		}
		cancel()
	}

	metrics.RecordLogout()
	log.Info("logout ok")
	audit.Log(ctx, audit.EventLogout, logger.UserID(userID), logger.Bool("access_token", accessToken != ""))
	return nil
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := s.deps.Issuer.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	revoked, err := s.deps.Revocations.IsRevokedClaims(cctx, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}
