package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/idx"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

const (
	DefaultAdminClientID     = "ghost-admin"
	DefaultAdminClientSecret = "not_available"
)

// BootstrapService seeds the rows the token endpoints rely on: the admin
// client, the installation secret and optionally an owner account.
type BootstrapService struct {
	Store store.Store

	AdminClientID     string
	AdminClientSecret string

	// OwnerEmail and OwnerPassword create the first user when both are set
	// and no user with that email exists.
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string

	Now func() time.Time
}

// Seed is idempotent and runs on every startup.
func (s *BootstrapService) Seed(ctx context.Context) error {
	if err := s.seedClient(ctx); err != nil {
		return fmt.Errorf("seed admin client: %w", err)
	}
	if err := s.seedSecret(ctx); err != nil {
		return fmt.Errorf("seed installation secret: %w", err)
	}
	if s.OwnerEmail != "" && s.OwnerPassword != "" {
		if err := s.seedOwner(ctx); err != nil {
			return fmt.Errorf("seed owner: %w", err)
		}
	}
	return nil
}

func (s *BootstrapService) seedClient(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	slug := s.AdminClientID
	if slug == "" {
		slug = DefaultAdminClientID
	}
	secret := s.AdminClientSecret
	if secret == "" {
		secret = DefaultAdminClientSecret
	}

	c, err := s.Store.Clients().GetClientBySlug(ctx, slug)
	switch {
	case err == nil:
		if cryptox.VerifyPassword(secret, c.SecretHash) == nil {
			return nil
		}
		h, err := cryptox.HashPassword(secret)
		if err != nil {
			return err
		}
		l.Info("admin client secret changed", slog.String("client", slug))
		return s.Store.Clients().UpdateClientSecretHash(ctx, c.ID, h)

	case errors.Is(err, store.ErrNotFound):
		h, err := cryptox.HashPassword(secret)
		if err != nil {
			return err
		}
		now := s.now()
		err = s.Store.Clients().CreateClient(ctx, domain.Client{
			ID:         idx.NewAt(now).String(),
			Slug:       slug,
			Name:       "Admin",
			SecretHash: h,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		if err == nil {
			l.Info("admin client created", slog.String("client", slug))
		}
		return err

	default:
		return err
	}
}

func (s *BootstrapService) seedSecret(ctx context.Context) error {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	created, err := s.Store.Settings().InsertSettingIfAbsent(ctx, domain.SettingDBHash, secret)
	if err != nil {
		return err
	}
	if created {
		slogx.FromContext(ctx).Info("installation secret generated")
	}
	return nil
}

func (s *BootstrapService) seedOwner(ctx context.Context) error {
	_, err := s.Store.Users().GetUserByEmail(ctx, s.OwnerEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	h, err := cryptox.HashPassword(s.OwnerPassword)
	if err != nil {
		return err
	}
	now := s.now()
	name := s.OwnerName
	if name == "" {
		name = "Owner"
	}
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        s.OwnerEmail,
		PasswordHash: h,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.Store.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	if err == nil {
		slogx.FromContext(ctx).Info("owner account created", slog.String("user_id", u.ID))
	}
	return err
}

func (s *BootstrapService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
