package sqlite

import (
	"context"
	"time"
)

type settingsRepo struct {
	q querier
}

func (r *settingsRepo) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	if err := r.q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v); err != nil {
		return "", mapNotFound(err)
	}
	return v, nil
}

func (r *settingsRepo) InsertSettingIfAbsent(ctx context.Context, key, value string) (bool, error) {
	n, err := affected(r.q.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT (key) DO NOTHING`,
		key, value, toMillis(time.Now()),
	))
	return n > 0, err
}
