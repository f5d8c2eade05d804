package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
)

type clientsRepo struct {
	q querier
}

func (r *clientsRepo) GetClientBySlug(ctx context.Context, slug string) (domain.Client, error) {
	var (
		c                  domain.Client
		created, updatedAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, slug, name, secret_hash, created_at, updated_at FROM clients WHERE slug = ?`, slug,
	).Scan(&c.ID, &c.Slug, &c.Name, &c.SecretHash, &created, &updatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := toMillis(time.Now())
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO clients (id, slug, name, secret_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, c.SecretHash, now, now,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) UpdateClientSecretHash(ctx context.Context, id, secretHash string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE clients SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		secretHash, toMillis(time.Now()), id,
	))
}
