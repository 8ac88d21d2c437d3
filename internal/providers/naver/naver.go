// Package naver implements the Naver OAuth 2.0 login adapter.
package naver

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/providers"
)

const (
	authEndpoint     = "https://nid.naver.com/oauth2.0/authorize"
	tokenEndpoint    = "https://nid.naver.com/oauth2.0/token"
	userInfoEndpoint = "https://openapi.naver.com/v1/nid/me"

	DefaultEmail    = "no-email@naver.com"
	DefaultNickname = "네이버 사용자"

	resultOK = "00"
)

// Provider is the Naver adapter. Naver requires a state on both the
// authorization request and the token exchange.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	http        *http.Client
}

var _ providers.Provider = (*Provider)(nil)

// New creates the Naver adapter.
func New(cfg providers.Config) (providers.Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("naver: client_id required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("naver: redirect_uri required")
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
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

func (p *Provider) Name() types.Provider { return types.ProviderNaver }

func (p *Provider) RequiresState() bool { return true }

func (p *Provider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *Provider) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if state == "" {
		return nil, fmt.Errorf("%w: naver exchange requires state", providers.ErrUpstreamAuth)
	}
	return providers.Exchange(ctx, p.oauth, p.http, code, oauth2.SetAuthURLParam("state", state))
}

func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (providers.Profile, error) {
	var info UserInfo
	if err := providers.FetchJSON(ctx, p.http, p.userInfoURL, accessToken, &info); err != nil {
		return nil, err
	}
	if info.ResultCode != resultOK {
		return nil, fmt.Errorf("%w: naver resultcode %q: %s", providers.ErrUpstreamProfile, info.ResultCode, info.Message)
	}
	if info.Response == nil {
		return nil, fmt.Errorf("%w: naver response missing", providers.ErrUpstreamProfile)
	}
	return &info, nil
}

// UserInfo is the /v1/nid/me envelope.
type UserInfo struct {
	ResultCode string    `json:"resultcode"`
	Message    string    `json:"message"`
	Response   *Response `json:"response"`
}

type Response struct {
	ID           string  `json:"id"`
	Nickname     *string `json:"nickname"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	ProfileImage *string `json:"profile_image"`
}

// Normalize applies the Naver defaults.
func (u *UserInfo) Normalize() providers.CanonicalProfile {
	out := providers.CanonicalProfile{
		Email:       DefaultEmail,
		DisplayName: DefaultNickname,
	}
	r := u.Response
	if r == nil {
		return out
	}
	out.ExternalID = r.ID
	if r.Email != nil && *r.Email != "" {
		out.Email = *r.Email
	}
	if r.Nickname != nil && *r.Nickname != "" {
		out.DisplayName = *r.Nickname
	}
	if r.ProfileImage != nil && *r.ProfileImage != "" {
		v := *r.ProfileImage
		out.AvatarURL = &v
	}
	return out
}
