package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
)

type accessTokensRepo struct {
	q querier
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO access_tokens (id, token_hash, user_id, client_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.TokenHash, t.UserID, t.ClientID, toMillis(t.ExpiresAt), toMillis(created),
	)
	return mapConstraint(err)
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	var (
		t                domain.AccessToken
		expires, created int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, token_hash, user_id, client_id, expires_at, created_at
		 FROM access_tokens WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ClientID, &expires, &created)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	t.ExpiresAt = fromMillis(expires)
	t.CreatedAt = fromMillis(created)
	return t, nil
}

func (r *accessTokensRepo) UpdateAccessTokenExpiry(ctx context.Context, hash string, expiresAt time.Time) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE access_tokens SET expires_at = MIN(expires_at, ?) WHERE token_hash = ?`,
		toMillis(expiresAt), hash,
	))
}

func (r *accessTokensRepo) DeleteAccessToken(ctx context.Context, hash string) error {
	return requireRow(r.q.ExecContext(ctx, `DELETE FROM access_tokens WHERE token_hash = ?`, hash))
}

func (r *accessTokensRepo) DeleteUserAccessTokens(ctx context.Context, userID string) (int64, error) {
	return affected(r.q.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_id = ?`, userID))
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.q.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at <= ?`, toMillis(now)))
}
