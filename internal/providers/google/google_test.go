package google

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

func TestAuthorizeURL(t *testing.T) {
	p, err := New(providers.Config{ClientID: "gid", RedirectURI: "http://localhost:8080/oauth/google/callback"})
	require.NoError(t, err)

	u, err := url.Parse(p.AuthorizeURL(""))
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	require.Equal(t, "profile email", q.Get("scope"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "http://localhost:8080/oauth/google/callback", q.Get("redirect_uri"))
}

func TestLoginFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "g-at", "token_type": "Bearer", "expires_in": 3599})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer g-at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1098","email":"g@gmail.com","verified_email":true,"name":"Gopher","picture":"https://g/p.png","locale":"ko"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := New(providers.Config{
		ClientID: "gid", ClientSecret: "gsecret", RedirectURI: "http://cb",
		TokenURL: srv.URL + "/token", UserInfoURL: srv.URL + "/userinfo",
	})
	require.NoError(t, err)

	tok, err := p.Exchange(context.Background(), "code", "")
	require.NoError(t, err)
	prof, err := p.FetchProfile(context.Background(), tok.AccessToken)
	require.NoError(t, err)

	c := prof.Normalize()
	require.Equal(t, "1098", c.ExternalID)
	require.Equal(t, "g@gmail.com", c.Email)
	require.Equal(t, "Gopher", c.DisplayName)
	require.Equal(t, "https://g/p.png", *c.AvatarURL)
}

func TestNormalizeDefaults(t *testing.T) {
	c := (&UserInfo{ID: "1"}).Normalize()
	require.Equal(t, "no-email@gmail.com", c.Email)
	require.Equal(t, "구글 사용자", c.DisplayName)
	require.Nil(t, c.AvatarURL)
}

func TestNewRequiresClientID(t *testing.T) {
	_, err := New(providers.Config{RedirectURI: "http://cb"})
	require.Error(t, err)
}
