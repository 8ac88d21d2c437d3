// Package google implements the Google OAuth 2.0 login adapter.
package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/providers"
)

const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

	DefaultEmail    = "no-email@gmail.com"
	DefaultNickname = "구글 사용자"
)

var DefaultScopes = []string{"profile", "email"}

// Provider is the Google adapter.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	http        *http.Client
}

var _ providers.Provider = (*Provider)(nil)

// New creates the Google adapter.
func New(cfg providers.Config) (providers.Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google: client_id required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("google: redirect_uri required")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   providers.Or(cfg.AuthURL, authEndpoint),
				TokenURL:  providers.Or(cfg.TokenURL, tokenEndpoint),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: providers.Or(cfg.UserInfoURL, userInfoEndpoint),
		http:        cfg.Client(),
	}, nil
}

func (p *Provider) Name() types.Provider { return types.ProviderGoogle }

func (p *Provider) RequiresState() bool { return false }

func (p *Provider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *Provider) Exchange(ctx context.Context, code, _ string) (*oauth2.Token, error) {
	return providers.Exchange(ctx, p.oauth, p.http, code)
}

func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (providers.Profile, error) {
	var info UserInfo
	if err := providers.FetchJSON(ctx, p.http, p.userInfoURL, accessToken, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UserInfo is the oauth2/v2/userinfo response.
type UserInfo struct {
	ID            string  `json:"id"`
	Email         *string `json:"email"`
	VerifiedEmail bool    `json:"verified_email"`
	Name          *string `json:"name"`
	GivenName     string  `json:"given_name"`
	FamilyName    string  `json:"family_name"`
	Picture       *string `json:"picture"`
	Locale        string  `json:"locale"`
}

// Normalize applies the Google defaults.
func (u *UserInfo) Normalize() providers.CanonicalProfile {
	out := providers.CanonicalProfile{
		ExternalID:  u.ID,
		Email:       DefaultEmail,
		DisplayName: DefaultNickname,
	}
	if u.Email != nil && *u.Email != "" {
		out.Email = *u.Email
	}
	if u.Name != nil && *u.Name != "" {
		out.DisplayName = *u.Name
	}
	if u.Picture != nil && *u.Picture != "" {
		v := *u.Picture
		out.AvatarURL = &v
	}
	return out
}
