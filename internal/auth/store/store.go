package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories are reached
// through methods so a Tx can hand out the same repos bound to the
// transaction.
type Store interface {
	Users() Users
	Clients() Clients
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens
	Settings() Settings

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateStatus(ctx context.Context, userID string, status domain.UserStatus) error
}

type Clients interface {
	GetClientBySlug(ctx context.Context, slug string) (domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) error
	UpdateClientSecretHash(ctx context.Context, id, secretHash string) error
}

type AccessTokens interface {
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetAccessTokenByHash returns the record regardless of expiry.
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)

	// UpdateAccessTokenExpiry sets expires_at to the earlier of the stored
	// value and expiresAt.
	UpdateAccessTokenExpiry(ctx context.Context, hash string, expiresAt time.Time) error

	DeleteAccessToken(ctx context.Context, hash string) error
	DeleteUserAccessTokens(ctx context.Context, userID string) (int64, error)
	DeleteExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ExtendRefreshToken slides the expiry of a live refresh token.
	ExtendRefreshToken(ctx context.Context, hash string, expiresAt time.Time) error

	DeleteRefreshToken(ctx context.Context, hash string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error)
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)

	// InsertSettingIfAbsent leaves an existing value untouched and reports
	// whether a row was written.
	InsertSettingIfAbsent(ctx context.Context, key, value string) (bool, error)
}
