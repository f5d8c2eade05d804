package bruteforce

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore keeps records in the brute_attempts table of a SQLite database.
// Times are stored as unix milliseconds.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (Record, bool, error) {
	const q = `SELECT count, window_start FROM brute_attempts WHERE key = ?`

	var (
		count int
		start int64
	)
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&count, &start)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, err
	}
	return Record{Count: count, WindowStart: time.UnixMilli(start)}, true, nil
}

func (s *SQLStore) Increment(ctx context.Context, key string, now time.Time, window time.Duration) (Record, error) {
	const q = `
INSERT INTO brute_attempts (key, count, window_start) VALUES (?1, 1, ?2)
ON CONFLICT (key) DO UPDATE SET
  count = CASE WHEN brute_attempts.window_start <= ?3 THEN 1 ELSE brute_attempts.count + 1 END,
  window_start = CASE WHEN brute_attempts.window_start <= ?3 THEN excluded.window_start ELSE brute_attempts.window_start END
RETURNING count, window_start`

	var (
		count int
		start int64
	)
	cutoff := now.Add(-window).UnixMilli()
	if err := s.DB.QueryRowContext(ctx, q, key, now.UnixMilli(), cutoff).Scan(&count, &start); err != nil {
		return Record{}, err
	}
	return Record{Count: count, WindowStart: time.UnixMilli(start)}, nil
}

func (s *SQLStore) Decrement(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE brute_attempts SET count = count - 1 WHERE key = ? AND count > 0`, key)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM brute_attempts WHERE key = ?`, key)
	return err
}

func (s *SQLStore) Reset(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM brute_attempts`)
	return err
}

func (s *SQLStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM brute_attempts WHERE window_start < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
