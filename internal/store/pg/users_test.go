package pg

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
)

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	require.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	require.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUserRepoFindOrCreate(t *testing.T) {
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	require.NoError(t, RunMigrations(dsn))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := New(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer st.Close()
	repo := st.Users()

	oauthID := "pg-test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	avatar := "https://img/1.png"

	first, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider: types.ProviderKakao, OAuthID: oauthID,
		Email: "no-email@kakao.com", Nickname: "카카오 사용자", AvatarURL: &avatar,
	})
	require.NoError(t, err)
	require.Equal(t, types.RoleUser, first.Role)

	second, err := repo.FindOrCreate(ctx, repository.FindOrCreateInput{
		Provider: types.ProviderKakao, OAuthID: oauthID,
		Email: "new@kakao.com", Nickname: "새 이름",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "new@kakao.com", second.Email)
	require.Equal(t, "새 이름", second.Nickname)
	require.NotNil(t, second.AvatarURL)
	require.Equal(t, avatar, *second.AvatarURL)

	byID, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, oauthID, byID.OAuthID)

	_, err = repo.FindByProvider(ctx, types.ProviderNaver, oauthID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
