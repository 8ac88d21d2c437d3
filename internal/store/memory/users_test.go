package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
)

func strPtr(s string) *string { return &s }

func TestFindOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	first, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider: types.ProviderNaver, OAuthID: "n-1",
		Email: "a@naver.com", Nickname: "a", AvatarURL: strPtr("https://img/a.png"),
	})
	require.NoError(t, err)
	require.Equal(t, types.RoleUser, first.Role)

	second, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider: types.ProviderNaver, OAuthID: "n-1",
		Email: "b@naver.com", Nickname: "b",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "b@naver.com", second.Email)
	require.Equal(t, "b", second.Nickname)
	require.Equal(t, "https://img/a.png", *second.AvatarURL)

	// same external id under another provider is another user
	other, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider: types.ProviderGoogle, OAuthID: "n-1", Email: "c@gmail.com", Nickname: "c",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestFindOrCreateRejectsInvalidInput(t *testing.T) {
	repo := NewUserRepo()
	_, err := repo.FindOrCreate(context.Background(), repository.FindOrCreateInput{Provider: types.ProviderKakao})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = repo.FindOrCreate(context.Background(), repository.FindOrCreateInput{Provider: "GITHUB", OAuthID: "1"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestFindByIDAndProvider(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	_, err := repo.FindByID(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	u, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{Provider: types.ProviderKakao, OAuthID: "999", Email: "e", Nickname: "n"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "999", got.OAuthID)

	got, err = repo.FindByProvider(ctx, types.ProviderKakao, "999")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	// returned records are copies
	got.Nickname = "mutated"
	again, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "n", again.Nickname)
}

func TestConcurrentFindOrCreateSameUser(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	var wg sync.WaitGroup
	ids := make([]int64, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
				Provider: types.ProviderKakao, OAuthID: "same", Email: "e", Nickname: fmt.Sprint(i),
			})
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}
