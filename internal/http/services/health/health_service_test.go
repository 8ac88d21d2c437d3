package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_AllHealthy(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := NewHealthService(Deps{
		Checks: []Check{
			{Name: "redis", Driver: "redis", Ping: func(context.Context) error { return nil }},
			{Name: "database", Driver: "pg", Ping: func(context.Context) error { return nil }},
		},
		Now: func() time.Time { return fixed },
	})

	res := svc.Check(context.Background())
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, fixed, res.Timestamp)
	require.Len(t, res.Services, 2)
	assert.True(t, res.Services["redis"].Connected)
	assert.Equal(t, "pg", res.Services["database"].Driver)
}

func TestCheck_OneDown(t *testing.T) {
	svc := NewHealthService(Deps{
		Checks: []Check{
			{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }},
			{Name: "database", Ping: func(context.Context) error { return nil }},
		},
	})

	res := svc.Check(context.Background())
	assert.Equal(t, "unhealthy", res.Status)
	assert.False(t, res.Services["redis"].Connected)
	assert.Contains(t, res.Services["redis"].Error, "refused")
	assert.True(t, res.Services["database"].Connected)
}

func TestCheck_TimeoutAndNilPing(t *testing.T) {
	svc := NewHealthService(Deps{
		Timeout: 20 * time.Millisecond,
		Checks: []Check{
			{Name: "slow", Ping: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}},
			{Name: "missing"},
		},
	})

	res := svc.Check(context.Background())
	assert.Equal(t, "unhealthy", res.Status)
	assert.Contains(t, res.Services["slow"].Error, "deadline")
	assert.False(t, res.Services["missing"].Connected)
}
