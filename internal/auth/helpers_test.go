package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/cache"
	"github.com/kjun-ai/authgate/internal/jwt"
)

const testSecret = "test-secret-test-secret-test-secret!"

var errBoom = errors.New("boom")

// brokenCache fails every operation.
type brokenCache struct{ cache.Client }

func (brokenCache) Get(context.Context, string) (string, error)              { return "", errBoom }
func (brokenCache) Set(context.Context, string, string, time.Duration) error { return errBoom }
func (brokenCache) Delete(context.Context, string) error                     { return errBoom }
func (brokenCache) Exists(context.Context, string) (bool, error)             { return false, errBoom }

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newIssuer(t *testing.T, clk *clock) *jwt.Issuer {
	t.Helper()
	iss, err := jwt.NewIssuer(testSecret, 30*time.Minute, jwt.WithClock(clk.Now))
	require.NoError(t, err)
	return iss
}
