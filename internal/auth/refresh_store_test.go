package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/cache"
)

func TestRefreshIssueThenValidate(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory("auth"), 0)
	require.Equal(t, DefaultRefreshTTL, store.TTL())

	cred, err := store.IssueFor(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, cred)

	require.True(t, store.Validate(ctx, 1, cred))
	require.False(t, store.Validate(ctx, 1, cred+"x"))
	require.False(t, store.Validate(ctx, 1, ""))
	require.False(t, store.Validate(ctx, 2, cred))
}

func TestRefreshValidateIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory(""), time.Hour)

	cred, err := store.IssueFor(ctx, 3)
	require.NoError(t, err)

	flipped := []byte(cred)
	for i, b := range flipped {
		if b >= 'a' && b <= 'z' {
			flipped[i] = b - 32
			break
		}
		if b >= 'A' && b <= 'Z' {
			flipped[i] = b + 32
			break
		}
	}
	require.NotEqual(t, cred, string(flipped))
	require.False(t, store.Validate(ctx, 3, string(flipped)))
}

func TestRefreshStoresOnlyHash(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("")
	store := NewRefreshStore(c, time.Hour)

	cred, err := store.IssueFor(ctx, 5)
	require.NoError(t, err)

	stored, err := c.Get(ctx, "refresh:5")
	require.NoError(t, err)
	require.NotEqual(t, cred, stored)

	ttl, err := c.TTL(ctx, "refresh:5")
	require.NoError(t, err)
	require.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)
}

func TestRefreshRotateInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory(""), time.Hour)

	old, err := store.IssueFor(ctx, 7)
	require.NoError(t, err)
	next, err := store.Rotate(ctx, 7)
	require.NoError(t, err)

	require.NotEqual(t, old, next)
	require.False(t, store.Validate(ctx, 7, old))
	require.True(t, store.Validate(ctx, 7, next))
}

func TestRefreshIssueOverwritesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory(""), time.Hour)

	deviceA, err := store.IssueFor(ctx, 8)
	require.NoError(t, err)
	deviceB, err := store.IssueFor(ctx, 8)
	require.NoError(t, err)

	require.False(t, store.Validate(ctx, 8, deviceA))
	require.True(t, store.Validate(ctx, 8, deviceB))
}

func TestRefreshRevokeForIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory(""), time.Hour)

	cred, err := store.IssueFor(ctx, 9)
	require.NoError(t, err)

	require.NoError(t, store.RevokeFor(ctx, 9))
	require.NoError(t, store.RevokeFor(ctx, 9))
	require.False(t, store.Validate(ctx, 9, cred))

	// never issued
	require.NoError(t, store.RevokeFor(ctx, 10))
}

func TestRefreshValidateNeverFailsOnStoreError(t *testing.T) {
	store := NewRefreshStore(brokenCache{}, time.Hour)
	require.False(t, store.Validate(context.Background(), 1, "anything"))

	_, err := store.IssueFor(context.Background(), 1)
	require.ErrorIs(t, err, errBoom)
}

func TestRefreshExpires(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshStore(cache.NewMemory(""), 30*time.Millisecond)

	cred, err := store.IssueFor(ctx, 11)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	require.False(t, store.Validate(ctx, 11, cred))
}
