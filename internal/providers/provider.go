// Package providers defines the social login adapters.
//
// Each identity provider (Kakao, Naver, Google) lives in its own sub-package
// and implements Provider: build the authorization URL, exchange the code,
// fetch the provider-specific profile, and normalize it into a
// CanonicalProfile with per-provider defaults.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/kjun-ai/authgate/internal/domain/types"
)

var (
	// ErrUpstreamAuth means the provider rejected the code or the token
	// endpoint answered with an error.
	ErrUpstreamAuth = errors.New("upstream auth failed")

	// ErrUpstreamProfile means the user-info call failed or returned
	// a malformed body.
	ErrUpstreamProfile = errors.New("upstream profile failed")
)

// DefaultHTTPTimeout bounds every provider HTTP call.
const DefaultHTTPTimeout = 5 * time.Second

// Provider is the contract every social login adapter implements.
type Provider interface {
	Name() types.Provider

	// RequiresState reports whether the login flow must carry a CSRF state.
	RequiresState() bool

	// AuthorizeURL builds the provider authorization URL. state may be empty
	// for providers that do not require it.
	AuthorizeURL(state string) string

	// Exchange trades an authorization code for a provider access token.
	Exchange(ctx context.Context, code, state string) (*oauth2.Token, error)

	// FetchProfile calls the user-info endpoint with the provider access token.
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}

// Profile is a raw provider profile. Each provider has its own shape; all
// of them normalize to the same canonical form.
type Profile interface {
	Normalize() CanonicalProfile
}

// CanonicalProfile is the provider-agnostic identity of a login attempt.
// AvatarURL is nil when the provider did not send one; it is never defaulted.
type CanonicalProfile struct {
	ExternalID  string
	Email       string
	DisplayName string
	AvatarURL   *string
}

// Config configures one provider instance.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Endpoint overrides. Empty means the provider default.
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

// Client returns the configured HTTP client or a new one with the timeout.
func (c Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Or returns v, or def when v is empty.
func Or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Exchange runs the oauth2 code exchange with the adapter's HTTP client and
// maps every failure to ErrUpstreamAuth.
func Exchange(ctx context.Context, cfg *oauth2.Config, hc *http.Client, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrUpstreamAuth)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}
	return tok, nil
}
