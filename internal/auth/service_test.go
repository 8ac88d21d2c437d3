package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/kjun-ai/authgate/internal/cache"
	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
	"github.com/kjun-ai/authgate/internal/providers"
	"github.com/kjun-ai/authgate/internal/providers/kakao"
	"github.com/kjun-ai/authgate/internal/store/memory"
)

// fakeProvider answers the code "abc" with a fixed profile.
type fakeProvider struct {
	name         types.Provider
	requireState bool
	profile      providers.Profile
	exchanges    int
}

func (p *fakeProvider) Name() types.Provider { return p.name }
func (p *fakeProvider) RequiresState() bool  { return p.requireState }

func (p *fakeProvider) AuthorizeURL(state string) string {
	q := url.Values{"client_id": {"cid"}}
	if state != "" {
		q.Set("state", state)
	}
	return "https://idp.example/authorize?" + q.Encode()
}

func (p *fakeProvider) Exchange(_ context.Context, code, _ string) (*oauth2.Token, error) {
	p.exchanges++
	if code != "abc" {
		return nil, providers.ErrUpstreamAuth
	}
	return &oauth2.Token{AccessToken: "upstream-at"}, nil
}

func (p *fakeProvider) FetchProfile(_ context.Context, accessToken string) (providers.Profile, error) {
	if accessToken != "upstream-at" {
		return nil, providers.ErrUpstreamProfile
	}
	return p.profile, nil
}

type fixture struct {
	svc     Service
	users   repository.UserRepository
	cache   cache.Client
	refresh *RefreshStore
	clk     *clock
	kakao   *fakeProvider
	naver   *fakeProvider
}

func int64Ptr(v int64) *int64 { return &v }

func newFixture(t *testing.T, users repository.UserRepository) *fixture {
	t.Helper()
	if users == nil {
		users = memory.NewUserRepo()
	}
	clk := &clock{t: time.Now().UTC()}
	iss := newIssuer(t, clk)
	c := cache.NewMemory("auth")

	reg := providers.NewRegistry()
	kp := &fakeProvider{name: types.ProviderKakao, profile: &kakao.UserInfo{ID: int64Ptr(999)}}
	np := &fakeProvider{name: types.ProviderNaver, requireState: true, profile: &kakao.UserInfo{ID: int64Ptr(5)}}
	reg.Add(kp)
	reg.Add(np)

	rs := NewRevocationStore(c, iss)
	rs.now = clk.Now
	refresh := NewRefreshStore(c, time.Hour)

	svc := NewService(Deps{
		Providers:   reg,
		Users:       users,
		Issuer:      iss,
		Refresh:     refresh,
		Revocations: rs,
		States:      NewStateStore(c, time.Minute),
		CheckState:  true,
	})
	return &fixture{svc: svc, users: users, cache: c, refresh: refresh, clk: clk, kakao: kp, naver: np}
}

func TestLoginKakaoDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)

	require.Equal(t, "no-email@kakao.com", res.User.Email)
	require.Equal(t, "카카오 사용자", res.User.Nickname)
	require.Nil(t, res.User.AvatarURL)
	require.Equal(t, "999", res.User.OAuthID)

	stored, err := f.users.FindByProvider(ctx, types.ProviderKakao, "999")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, stored.ID)
	require.Equal(t, "카카오 사용자", stored.Nickname)

	claims, err := f.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	require.Equal(t, res.ExpiresAt.Unix(), claims.ExpiresAt.Unix())

	require.True(t, f.refresh.Validate(ctx, res.User.ID, res.RefreshToken))
}

func TestLoginTwiceKeepsUserID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	a, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)
	b, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)

	require.Equal(t, a.User.ID, b.User.ID)
	require.NotEqual(t, a.AccessToken, b.AccessToken)
	require.False(t, f.refresh.Validate(ctx, a.User.ID, a.RefreshToken))
	require.True(t, f.refresh.Validate(ctx, b.User.ID, b.RefreshToken))
}

func TestLoginUpstreamFailureLeavesNoState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.Login(ctx, types.ProviderKakao, "wrong", "")
	require.ErrorIs(t, err, ErrUpstreamAuth)

	_, err = f.users.FindByProvider(ctx, types.ProviderKakao, "999")
	require.ErrorIs(t, err, repository.ErrNotFound)

	st, err := f.cache.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, st.Keys)
}

func TestLoginUserStoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingUsers{})

	_, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.ErrorIs(t, err, ErrUserStore)

	st, err := f.cache.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, st.Keys)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Login(context.Background(), types.ProviderKakao, " ", "")
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, f.kakao.exchanges)

	_, err = f.svc.Login(context.Background(), types.ProviderGoogle, "abc", "")
	require.ErrorIs(t, err, ErrUnknownProvider)

	_, err = f.svc.Login(context.Background(), "GITHUB", "abc", "")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestLoginStateRequired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.Login(ctx, types.ProviderNaver, "abc", "forged")
	require.ErrorIs(t, err, ErrUpstreamAuth)
	require.ErrorIs(t, err, ErrStateInvalid)
	require.Zero(t, f.naver.exchanges)

	loginURL, err := f.svc.LoginURL(ctx, types.ProviderNaver)
	require.NoError(t, err)
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	_, err = f.svc.Login(ctx, types.ProviderNaver, "abc", state)
	require.NoError(t, err)

	// replay
	_, err = f.svc.Login(ctx, types.ProviderNaver, "abc", state)
	require.ErrorIs(t, err, ErrStateInvalid)
}

func TestLoginURLWithoutState(t *testing.T) {
	f := newFixture(t, nil)
	loginURL, err := f.svc.LoginURL(context.Background(), types.ProviderKakao)
	require.NoError(t, err)
	require.NotContains(t, loginURL, "state=")
}

func TestRefreshRotates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	login, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)

	res, err := f.svc.Refresh(ctx, login.User.ID, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, res.RefreshToken)

	claims, err := f.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, login.User.ID, claims.UserID)

	// the old credential is spent
	_, err = f.svc.Refresh(ctx, login.User.ID, login.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshInvalid)

	_, err = f.svc.Refresh(ctx, login.User.ID, res.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshWithoutRecord(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.Refresh(context.Background(), 12345, "whatever")
	require.ErrorIs(t, err, ErrRefreshInvalid)
	require.Nil(t, res)
}

func TestRefreshValidation(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Refresh(context.Background(), 0, "x")
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Refresh(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRefreshForVanishedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	cred, err := f.refresh.IssueFor(ctx, 777)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, 777, cred)
	require.ErrorIs(t, err, ErrRefreshInvalid)
	require.False(t, f.refresh.Validate(ctx, 777, cred))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	login, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.User.ID, login.AccessToken))

	_, err = f.svc.Authenticate(ctx, login.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, login.User.ID, login.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshInvalid)

	// idempotent, tolerant of junk
	require.NoError(t, f.svc.Logout(ctx, login.User.ID, login.AccessToken))
	require.NoError(t, f.svc.Logout(ctx, login.User.ID, "not-a-jwt"))
	require.NoError(t, f.svc.Logout(ctx, 424242, ""))

	require.ErrorIs(t, f.svc.Logout(ctx, 0, ""), ErrValidation)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	login, err := f.svc.Login(ctx, types.ProviderKakao, "abc", "")
	require.NoError(t, err)

	f.clk.t = login.ExpiresAt
	_, err = f.svc.Authenticate(ctx, login.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
