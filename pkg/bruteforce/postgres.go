package bruteforce

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore shares records between instances through PostgreSQL.
type PostgresStore struct {
	pool pgxQuerier
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresStoreWithQuerier is used by tests to inject a fake connection.
func NewPostgresStoreWithQuerier(q pgxQuerier) *PostgresStore {
	return &PostgresStore{pool: q}
}

// MigratePostgres applies the embedded brute_attempts migrations.
func MigratePostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, "migrations")
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Record, bool, error) {
	const q = `SELECT count, window_start FROM brute_attempts WHERE key = $1`

	var rec Record
	err := s.pool.QueryRow(ctx, q, key).Scan(&rec.Count, &rec.WindowStart)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *PostgresStore) Increment(ctx context.Context, key string, now time.Time, window time.Duration) (Record, error) {
	const q = `
INSERT INTO brute_attempts (key, count, window_start) VALUES ($1, 1, $2)
ON CONFLICT (key) DO UPDATE SET
  count = CASE WHEN brute_attempts.window_start <= $3 THEN 1 ELSE brute_attempts.count + 1 END,
  window_start = CASE WHEN brute_attempts.window_start <= $3 THEN EXCLUDED.window_start ELSE brute_attempts.window_start END
RETURNING count, window_start`

	var rec Record
	if err := s.pool.QueryRow(ctx, q, key, now, now.Add(-window)).Scan(&rec.Count, &rec.WindowStart); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Decrement(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `UPDATE brute_attempts SET count = count - 1 WHERE key = $1 AND count > 0`, key)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM brute_attempts WHERE key = $1`, key)
	return err
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM brute_attempts`)
	return err
}

func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM brute_attempts WHERE window_start < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
