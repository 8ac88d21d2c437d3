// Package kakao implements the Kakao OAuth 2.0 login adapter.
package kakao

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/providers"
)

const (
	authEndpoint     = "https://kauth.kakao.com/oauth/authorize"
	tokenEndpoint    = "https://kauth.kakao.com/oauth/token"
	userInfoEndpoint = "https://kapi.kakao.com/v2/user/me"

	DefaultEmail    = "no-email@kakao.com"
	DefaultNickname = "카카오 사용자"
)

// DefaultScopes is sent as a single comma-separated value, as Kakao expects.
var DefaultScopes = []string{"profile_nickname", "profile_image"}

// Provider is the Kakao adapter.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	http        *http.Client
}

var _ providers.Provider = (*Provider)(nil)

// New creates the Kakao adapter.
func New(cfg providers.Config) (providers.Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("kakao: client_id required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("kakao: redirect_uri required")
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
			Scopes:       []string{strings.Join(scopes, ",")},
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

func (p *Provider) Name() types.Provider { return types.ProviderKakao }

func (p *Provider) RequiresState() bool { return false }

func (p *Provider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
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

// UserInfo is the /v2/user/me response.
type UserInfo struct {
	ID           *int64   `json:"id"`
	KakaoAccount *Account `json:"kakao_account"`
}

type Account struct {
	Email   *string  `json:"email"`
	Profile *Profile `json:"profile"`
}

type Profile struct {
	Nickname          *string `json:"nickname"`
	ProfileImageURL   *string `json:"profile_image_url"`
	ThumbnailImageURL *string `json:"thumbnail_image_url"`
}

// Normalize applies the Kakao defaults.
func (u *UserInfo) Normalize() providers.CanonicalProfile {
	out := providers.CanonicalProfile{
		Email:       DefaultEmail,
		DisplayName: DefaultNickname,
	}
	if u.ID != nil {
		out.ExternalID = strconv.FormatInt(*u.ID, 10)
	}
	acc := u.KakaoAccount
	if acc == nil {
		return out
	}
	if acc.Email != nil && *acc.Email != "" {
		out.Email = *acc.Email
	}
	if acc.Profile != nil {
		if n := acc.Profile.Nickname; n != nil && *n != "" {
			out.DisplayName = *n
		}
		if a := acc.Profile.ProfileImageURL; a != nil && *a != "" {
			v := *a
			out.AvatarURL = &v
		}
	}
	return out
}
