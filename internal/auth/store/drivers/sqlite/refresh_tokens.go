package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := toMillis(time.Now())
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, client_id, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TokenHash, t.UserID, t.ClientID, toMillis(t.ExpiresAt), now, now,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t                           domain.RefreshToken
		expires, created, updatedAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, token_hash, user_id, client_id, expires_at, created_at, updated_at
		 FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ClientID, &expires, &created, &updatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = fromMillis(expires)
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (r *refreshTokensRepo) ExtendRefreshToken(ctx context.Context, hash string, expiresAt time.Time) error {
	now := toMillis(time.Now())
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET expires_at = ?, updated_at = ? WHERE token_hash = ? AND expires_at > ?`,
		toMillis(expiresAt), now, hash, now,
	))
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, hash string) error {
	return requireRow(r.q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, hash))
}

func (r *refreshTokensRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	return affected(r.q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID))
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, toMillis(now)))
}
