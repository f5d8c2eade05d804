package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/idx"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

const (
	DefaultAccessTTL    = 60 * time.Minute
	DefaultRefreshTTL   = 14 * 24 * time.Hour
	DefaultRefreshGrace = 5 * time.Minute
)

// Revocation hints accepted by Revoke.
const (
	HintAccessToken  = "access_token"
	HintRefreshToken = "refresh_token"
)

// TokenService owns the lifecycle of access and refresh tokens.
type TokenService struct {
	Store        store.Store
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	RefreshGrace time.Duration
	Now          func() time.Time
}

// AuthenticateClient resolves clientID and checks its secret.
func (s *TokenService) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (domain.Client, error) {
	return authenticateClient(ctx, s.Store, clientID, clientSecret)
}

func authenticateClient(ctx context.Context, st store.Store, clientID, clientSecret string) (domain.Client, error) {
	if clientID == "" {
		return domain.Client{}, ErrInvalidClient
	}

	c, err := st.Clients().GetClientBySlug(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}

	if err := cryptox.VerifyPassword(clientSecret, c.SecretHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("client secret hash unreadable",
				slog.String("client", c.Slug), slog.Any("error", err))
		}
		return domain.Client{}, ErrInvalidClient
	}
	return c, nil
}

// Issue authenticates the client and mints a fresh token pair for user.
func (s *TokenService) Issue(ctx context.Context, user domain.User, clientID, clientSecret string) (*domain.TokenPair, error) {
	client, err := s.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}
	return s.IssueForClient(ctx, user, client)
}

// IssueForClient mints a token pair for a client already authenticated with
// AuthenticateClient.
func (s *TokenService) IssueForClient(ctx context.Context, user domain.User, client domain.Client) (*domain.TokenPair, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	access, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.AccessTokens().CreateAccessToken(ctx, domain.AccessToken{
			ID:        idx.NewAt(now).String(),
			UserID:    user.ID,
			ClientID:  client.ID,
			TokenHash: cryptox.FingerprintToken(access),
			ExpiresAt: now.Add(s.accessTTL()),
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.NewAt(now).String(),
			UserID:    user.ID,
			ClientID:  client.ID,
			TokenHash: cryptox.FingerprintToken(refresh),
			ExpiresAt: now.Add(s.refreshTTL()),
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		l.Error("failed to store token pair", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, err
	}

	l.Info("token pair issued", slog.String("user_id", user.ID), slog.String("client", client.Slug))
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    s.accessTTL(),
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The bearer
// token presented alongside it, when owned by the same user, stays usable for
// RefreshGrace only. The refresh token itself is kept and its expiry slides.
func (s *TokenService) Refresh(ctx context.Context, refreshToken, clientID, clientSecret, presentedAccess string) (*domain.TokenPair, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}

	client, err := s.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	access, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	fp := cryptox.FingerprintToken(refreshToken)
	var userID string

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if rt.Expired(now) {
			return ErrInvalidRefresh
		}
		if rt.ClientID != client.ID {
			return ErrInvalidClient
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if !u.CanSignIn() {
			return ErrInvalidRefresh
		}
		userID = u.ID

		if presentedAccess != "" {
			oldHash := cryptox.FingerprintToken(presentedAccess)
			old, err := tx.AccessTokens().GetAccessTokenByHash(ctx, oldHash)
			switch {
			case err == nil && old.UserID == rt.UserID:
				if err := tx.AccessTokens().UpdateAccessTokenExpiry(ctx, oldHash, now.Add(s.refreshGrace())); err != nil {
					return err
				}
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		if err := tx.AccessTokens().CreateAccessToken(ctx, domain.AccessToken{
			ID:        idx.NewAt(now).String(),
			UserID:    rt.UserID,
			ClientID:  client.ID,
			TokenHash: cryptox.FingerprintToken(access),
			ExpiresAt: now.Add(s.accessTTL()),
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return tx.RefreshTokens().ExtendRefreshToken(ctx, fp, now.Add(s.refreshTTL()))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// refresh token deleted between lookup and extension
			return nil, ErrInvalidRefresh
		}
		if !errors.Is(err, ErrNoPermission) {
			l.Error("failed to refresh token", slog.Any("error", err))
		}
		return nil, err
	}

	l.Info("access token refreshed", slog.String("user_id", userID), slog.String("client", client.Slug))
	return &domain.TokenPair{
		AccessToken: access,
		TokenType:   domain.TokenTypeBearer,
		ExpiresIn:   s.accessTTL(),
	}, nil
}

// RevokeAll deletes every access and refresh token belonging to userID.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return revokeAllTx(ctx, tx, userID)
	})
}

func revokeAllTx(ctx context.Context, tx store.Store, userID string) error {
	na, err := tx.AccessTokens().DeleteUserAccessTokens(ctx, userID)
	if err != nil {
		return err
	}
	nr, err := tx.RefreshTokens().DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("revoked user tokens",
		slog.String("user_id", userID),
		slog.Int64("access_tokens", na),
		slog.Int64("refresh_tokens", nr))
	return nil
}

// Revoke deletes a single token owned by userID. hint selects which kind is
// tried first; unknown tokens and tokens of other users are ignored.
func (s *TokenService) Revoke(ctx context.Context, userID, token, hint string) error {
	if token == "" {
		return nil
	}
	fp := cryptox.FingerprintToken(token)

	order := []string{HintAccessToken, HintRefreshToken}
	if hint == HintRefreshToken {
		order = []string{HintRefreshToken, HintAccessToken}
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, kind := range order {
			done, err := revokeOne(ctx, tx, kind, userID, fp)
			if err != nil || done {
				return err
			}
		}
		return nil
	})
}

func revokeOne(ctx context.Context, tx store.Store, kind, userID, fp string) (bool, error) {
	var owner string
	var err error

	if kind == HintRefreshToken {
		var rt domain.RefreshToken
		rt, err = tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		owner = rt.UserID
	} else {
		var at domain.AccessToken
		at, err = tx.AccessTokens().GetAccessTokenByHash(ctx, fp)
		owner = at.UserID
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if owner != userID {
		slogx.FromContext(ctx).Warn("revocation of foreign token ignored", slog.String("user_id", userID))
		return true, nil
	}

	if kind == HintRefreshToken {
		err = tx.RefreshTokens().DeleteRefreshToken(ctx, fp)
	} else {
		err = tx.AccessTokens().DeleteAccessToken(ctx, fp)
	}
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	return true, err
}

// Authenticate resolves a bearer access token to its user.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (domain.User, error) {
	if accessToken == "" {
		return domain.User{}, ErrInvalidAccessToken
	}

	at, err := s.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(accessToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidAccessToken
		}
		return domain.User{}, err
	}
	if at.Expired(s.now()) {
		return domain.User{}, ErrInvalidAccessToken
	}

	u, err := s.Store.Users().GetUserByID(ctx, at.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidAccessToken
		}
		return domain.User{}, err
	}
	if !u.CanSignIn() {
		return domain.User{}, ErrInvalidAccessToken
	}
	return u, nil
}

// AuthenticateToken lets TokenService back httpx.AuthnMiddleware.
func (s *TokenService) AuthenticateToken(ctx context.Context, token string) (string, error) {
	u, err := s.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *TokenService) refreshGrace() time.Duration {
	if s.RefreshGrace > 0 {
		return s.RefreshGrace
	}
	return DefaultRefreshGrace
}
