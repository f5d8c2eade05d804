package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// CredentialService checks email and password pairs. It keeps no state of its
// own; the caller reports outcomes to the brute-force guard.
type CredentialService struct {
	Store store.Store
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnHash spends the same work as a real verification so unknown emails are
// not distinguishable by latency.
func burnHash(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("pressauth-dummy-password")
	})
	if dummyHash != "" {
		_ = cryptox.VerifyPassword(password, dummyHash)
	}
}

// VerifyCredentials returns the user owning email when password matches.
// Legacy bcrypt hashes are upgraded to argon2id after a successful check.
func (s *CredentialService) VerifyCredentials(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			burnHash(password)
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrWrongPassword
		}
		l.Error("stored password hash unreadable", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, ErrWrongPassword
	}

	if !u.CanSignIn() {
		return domain.User{}, ErrUserSuspended
	}

	if cryptox.IsBcryptHash(u.PasswordHash) {
		s.upgradeHash(ctx, &u, password)
	}

	return u, nil
}

func (s *CredentialService) upgradeHash(ctx context.Context, u *domain.User, password string) {
	l := slogx.FromContext(ctx)

	h, err := cryptox.HashPassword(password)
	if err != nil {
		l.Warn("password rehash failed", slog.String("user_id", u.ID), slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, h); err != nil {
		l.Warn("password rehash not stored", slog.String("user_id", u.ID), slog.Any("error", err))
		return
	}
	u.PasswordHash = h
}
