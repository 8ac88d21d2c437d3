package kakao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/providers"
)

func newUpstream(t *testing.T, profile string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "abc" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"authorization code not found"}`))
			return
		}
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "kakao-client", r.PostForm.Get("client_id"))
		require.Equal(t, "kakao-secret", r.PostForm.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "kakao-at", "token_type": "bearer", "expires_in": 21599})
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer kakao-at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(t *testing.T, srv *httptest.Server) providers.Provider {
	t.Helper()
	p, err := New(providers.Config{
		ClientID:     "kakao-client",
		ClientSecret: "kakao-secret",
		RedirectURI:  "http://localhost:8080/oauth/kakao/callback",
		TokenURL:     srv.URL + "/oauth/token",
		UserInfoURL:  srv.URL + "/v2/user/me",
	})
	require.NoError(t, err)
	return p
}

func TestAuthorizeURL(t *testing.T) {
	p, err := New(providers.Config{ClientID: "cid", RedirectURI: "http://localhost:8080/oauth/kakao/callback?x=1 2"})
	require.NoError(t, err)

	u, err := url.Parse(p.AuthorizeURL(""))
	require.NoError(t, err)
	require.Equal(t, "kauth.kakao.com", u.Host)
	require.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "cid", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "http://localhost:8080/oauth/kakao/callback?x=1 2", q.Get("redirect_uri"))
	require.Equal(t, "profile_nickname,profile_image", q.Get("scope"))
	require.False(t, q.Has("state"))

	// deterministic
	require.Equal(t, p.AuthorizeURL(""), p.AuthorizeURL(""))
}

func TestLoginFlowWithDefaults(t *testing.T) {
	srv := newUpstream(t, `{"id":999,"kakao_account":{"profile":{"nickname":null}}}`)
	p := newProvider(t, srv)
	ctx := context.Background()

	tok, err := p.Exchange(ctx, "abc", "")
	require.NoError(t, err)
	require.Equal(t, "kakao-at", tok.AccessToken)

	prof, err := p.FetchProfile(ctx, tok.AccessToken)
	require.NoError(t, err)

	c := prof.Normalize()
	require.Equal(t, "999", c.ExternalID)
	require.Equal(t, "no-email@kakao.com", c.Email)
	require.Equal(t, "카카오 사용자", c.DisplayName)
	require.Nil(t, c.AvatarURL)
}

func TestNormalizeFullProfile(t *testing.T) {
	srv := newUpstream(t, `{"id":12,"kakao_account":{"email":"k@kakao.com","profile":{"nickname":"라이언","profile_image_url":"https://k/img.png","thumbnail_image_url":"https://k/t.png"}}}`)
	p := newProvider(t, srv)

	prof, err := p.FetchProfile(context.Background(), "kakao-at")
	require.NoError(t, err)
	c := prof.Normalize()
	require.Equal(t, "12", c.ExternalID)
	require.Equal(t, "k@kakao.com", c.Email)
	require.Equal(t, "라이언", c.DisplayName)
	require.NotNil(t, c.AvatarURL)
	require.Equal(t, "https://k/img.png", *c.AvatarURL)
}

func TestNormalizeWithoutAccount(t *testing.T) {
	c := (&UserInfo{}).Normalize()
	require.Empty(t, c.ExternalID)
	require.Equal(t, DefaultEmail, c.Email)
	require.Equal(t, DefaultNickname, c.DisplayName)
}

func TestExchangeRejected(t *testing.T) {
	p := newProvider(t, newUpstream(t, `{}`))
	_, err := p.Exchange(context.Background(), "wrong", "")
	require.ErrorIs(t, err, providers.ErrUpstreamAuth)

	_, err = p.Exchange(context.Background(), "", "")
	require.ErrorIs(t, err, providers.ErrUpstreamAuth)
}

func TestFetchProfileFailures(t *testing.T) {
	p := newProvider(t, newUpstream(t, `{not json`))

	_, err := p.FetchProfile(context.Background(), "bad-token")
	require.ErrorIs(t, err, providers.ErrUpstreamProfile)

	_, err = p.FetchProfile(context.Background(), "kakao-at")
	require.ErrorIs(t, err, providers.ErrUpstreamProfile)
}
