package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
)

const userColumns = `id, email, provider, oauth_id, nickname, avatar_url, role, created_at, updated_at`

// UserRepo implementa repository.UserRepository.
type UserRepo struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var provider, role string
	err := row.Scan(&u.ID, &u.Email, &provider, &u.OAuthID, &u.Nickname, &u.AvatarURL, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Provider = types.Provider(provider)
	u.Role = types.Role(role)
	return &u, nil
}

// FindOrCreate hace el upsert en una sola sentencia: el índice único
// (provider, oauth_id) serializa logins concurrentes del mismo usuario.
func (r *UserRepo) FindOrCreate(ctx context.Context, in repository.FindOrCreateInput) (*repository.User, error) {
	if !in.Provider.IsValid() || in.OAuthID == "" {
		return nil, repository.ErrInvalidInput
	}

	const q = `
		INSERT INTO users (email, provider, oauth_id, nickname, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, 'USER')
		ON CONFLICT (provider, oauth_id) DO UPDATE SET
			email      = EXCLUDED.email,
			nickname   = EXCLUDED.nickname,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			updated_at = now()
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, q, in.Email, string(in.Provider), in.OAuthID, in.Nickname, in.AvatarURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *UserRepo) FindByProvider(ctx context.Context, provider types.Provider, oauthID string) (*repository.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND oauth_id = $2`
	return scanUser(r.pool.QueryRow(ctx, q, string(provider), oauthID))
}

func (r *UserRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }
