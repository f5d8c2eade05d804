package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// Notifier delivers a password reset token to its user.
type Notifier interface {
	SendResetLink(ctx context.Context, user domain.User, token string, expiresAt time.Time) error
}

// LogNotifier writes the reset link to the log instead of sending mail.
type LogNotifier struct {
	// BaseURL is the admin URL the token is appended to, e.g.
	// https://example.com/ghost/reset/
	BaseURL string
}

func (n LogNotifier) SendResetLink(ctx context.Context, user domain.User, token string, expiresAt time.Time) error {
	link, err := ResetLink(n.BaseURL, token)
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("password reset link generated",
		slog.String("user_id", user.ID),
		slog.String("link", link),
		slog.Time("expires_at", expiresAt))
	return nil
}

// ResetLink joins base and the URL-escaped token with a trailing slash.
func ResetLink(base, token string) (string, error) {
	if base == "" {
		base = "/ghost/reset/"
	}
	link, err := url.JoinPath(base, url.PathEscape(token))
	if err != nil {
		return "", err
	}
	return link + "/", nil
}
