package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/resettoken"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

const DefaultResetTTL = 24 * time.Hour

// ResetService runs the two halves of the password reset flow.
type ResetService struct {
	Store    store.Store
	Notifier Notifier
	ResetTTL time.Duration
	Now      func() time.Time
	// Hash derives the stored password hash. Nil uses cryptox.HashPassword.
	Hash func(password string) (string, error)
}

// RequestReset creates a reset token for the user behind email and hands it
// to the notifier.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		return ErrUserNotFound
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	expires := s.now().Add(s.resetTTL())
	token := resettoken.Generate(u.Email, expires, secret, u.PasswordHash)

	n := s.Notifier
	if n == nil {
		n = LogNotifier{}
	}
	if err := n.SendResetLink(ctx, u, token, expires); err != nil {
		l.Error("failed to deliver reset link", slog.String("user_id", u.ID), slog.Any("error", err))
		return err
	}
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// checked before the new password is hashed and again inside the transaction
// that replaces the hash, so it can be used once. All tokens of the user are
// revoked.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	l := slogx.FromContext(ctx)
	now := s.now()

	if newPassword != confirm {
		return ErrPasswordsMismatch
	}
	if len([]rune(newPassword)) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	parts, err := resettoken.Decode(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return err
	}

	if _, err := verifyReset(ctx, s.Store.Users(), token, parts.Email, secret, now); err != nil {
		return err
	}

	newHash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := verifyReset(ctx, tx.Users(), token, parts.Email, secret, now)
		if err != nil {
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, newHash); err != nil {
			return err
		}
		// a successful reset proves ownership, so a lockout is lifted
		if u.Status == domain.UserLocked {
			if err := tx.Users().UpdateStatus(ctx, u.ID, domain.UserActive); err != nil {
				return err
			}
		}
		userID = u.ID
		return revokeAllTx(ctx, tx, u.ID)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidResetToken) && !errors.Is(err, ErrExpiredResetToken) {
			l.Error("password reset failed", slog.Any("error", err))
		}
		return err
	}

	l.Info("password reset", slog.String("user_id", userID))
	return nil
}

// verifyReset loads the user named by the token and checks the token against
// their current password hash.
func verifyReset(ctx context.Context, users store.Users, token, email, secret string, now time.Time) (domain.User, error) {
	u, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidResetToken
		}
		return domain.User{}, err
	}

	if _, err := resettoken.Verify(token, secret, u.PasswordHash, now); err != nil {
		if errors.Is(err, resettoken.ErrExpired) {
			return domain.User{}, ErrExpiredResetToken
		}
		return domain.User{}, ErrInvalidResetToken
	}
	return u, nil
}

func (s *ResetService) secret(ctx context.Context) (string, error) {
	v, err := s.Store.Settings().GetSetting(ctx, domain.SettingDBHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrResetNotConfigured
		}
		return "", err
	}
	return v, nil
}

func (s *ResetService) hash(password string) (string, error) {
	if s.Hash != nil {
		return s.Hash(password)
	}
	return cryptox.HashPassword(password)
}

func (s *ResetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ResetService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}
