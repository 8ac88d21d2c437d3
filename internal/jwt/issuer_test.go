package jwt

import (
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(t *testing.T, clk *fakeClock) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testSecret, 15*time.Minute, WithClock(clk.Now))
	require.NoError(t, err)
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 500_000_000, time.UTC)}
	iss := newTestIssuer(t, clk)

	at, err := iss.Issue(42, "a@b.com", "카카오 사용자")
	require.NoError(t, err)
	require.NotEmpty(t, at.TokenID)
	require.Equal(t, 15*time.Minute, at.ExpiresAt.Sub(at.IssuedAt))
	require.Zero(t, at.IssuedAt.Nanosecond())

	claims, err := iss.Verify(at.Token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "a@b.com", claims.Email)
	require.Equal(t, "카카오 사용자", claims.Nickname)
	require.Equal(t, at.TokenID, claims.TokenID())
	require.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestNewIssuerRejectsSubSecondTTL(t *testing.T) {
	_, err := NewIssuer(testSecret, 1500*time.Millisecond)
	require.ErrorIs(t, err, ErrTTLNotWholeSeconds)

	iss, err := NewIssuer(testSecret, 2*time.Second)
	require.NoError(t, err)
	at, err := iss.Issue(1, "", "")
	require.NoError(t, err)
	claims, err := iss.Verify(at.Token)
	require.NoError(t, err)
	require.Equal(t, at.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, 2*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestIssueGeneratesUniqueTokenIDs(t *testing.T) {
	iss := newTestIssuer(t, &fakeClock{t: time.Now()})

	seen := make(map[string]struct{})
	for n := 0; n < 200; n++ {
		at, err := iss.Issue(1, "", "")
		require.NoError(t, err)
		_, dup := seen[at.TokenID]
		require.False(t, dup)
		seen[at.TokenID] = struct{}{}
	}
}

func TestVerifyExpired(t *testing.T) {
	clk := &fakeClock{t: time.Now().UTC()}
	iss := newTestIssuer(t, clk)

	at, err := iss.Issue(7, "x@y.z", "n")
	require.NoError(t, err)

	clk.Advance(15*time.Minute - time.Second)
	_, err = iss.Verify(at.Token)
	require.NoError(t, err)

	// exactly at exp is already invalid
	clk.t = at.ExpiresAt
	_, err = iss.Verify(at.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	clk := &fakeClock{t: time.Now().UTC()}
	iss := newTestIssuer(t, clk)

	at, err := iss.Issue(7, "x@y.z", "n")
	require.NoError(t, err)

	parts := strings.Split(at.Token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	other, err := NewIssuer(strings.Repeat("z", 40), 15*time.Minute, WithClock(clk.Now))
	require.NoError(t, err)
	foreign, err := other.Issue(7, "x@y.z", "n")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"tampered":  tampered,
		"foreign":   foreign.Token,
		"malformed": "not-a-jwt",
		"empty":     "  ",
	} {
		_, err := iss.Verify(tok)
		require.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	clk := &fakeClock{t: time.Now().UTC()}
	iss := newTestIssuer(t, clk)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwtv5.NewNumericDate(clk.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = iss.Verify(hs512)
	require.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(none)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresIssuerWhenConfigured(t *testing.T) {
	clk := &fakeClock{t: time.Now().UTC()}
	a, err := NewIssuer(testSecret, time.Minute, WithClock(clk.Now), WithIssuer("authgate"))
	require.NoError(t, err)
	b, err := NewIssuer(testSecret, time.Minute, WithClock(clk.Now), WithIssuer("someone-else"))
	require.NoError(t, err)

	at, err := b.Issue(1, "", "")
	require.NoError(t, err)
	_, err = a.Verify(at.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewIssuerValidation(t *testing.T) {
	_, err := NewIssuer("short", time.Minute)
	require.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewIssuer(testSecret, 0)
	require.Error(t, err)
}

func TestRevocationKeyFallsBackToSubject(t *testing.T) {
	c := &Claims{}
	_, ok := c.RevocationKey()
	require.False(t, ok)

	c.Subject = "9"
	key, ok := c.RevocationKey()
	require.True(t, ok)
	require.Equal(t, "9", key)

	c.ID = "jti-1"
	key, ok = c.RevocationKey()
	require.True(t, ok)
	require.Equal(t, "jti-1", key)
}
