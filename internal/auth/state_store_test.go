package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/cache"
)

func TestStateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore(cache.NewMemory(""), time.Minute)

	st, err := s.Issue(ctx)
	require.NoError(t, err)

	ok, err := s.Consume(ctx, st)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Consume(ctx, st)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStateUnknownOrEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore(cache.NewMemory(""), 0)

	ok, err := s.Consume(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Consume(ctx, "never-issued")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStateStoreError(t *testing.T) {
	s := NewStateStore(brokenCache{}, time.Minute)
	_, err := s.Issue(context.Background())
	require.ErrorIs(t, err, errBoom)

	_, err = s.Consume(context.Background(), "x")
	require.ErrorIs(t, err, errBoom)
}
