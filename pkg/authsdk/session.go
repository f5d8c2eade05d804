package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// expiryBuffer makes the session refresh slightly before the server would
// reject the access token.
const expiryBuffer = 30 * time.Second

// Session holds a token pair and refreshes the access token on demand. The
// refresh token is reused for the lifetime of the session.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *SDKClient, tokens *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  tokens.AccessToken,
		refreshToken: tokens.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - expiryBuffer),
	}
}

// AccessToken returns a live access token, refreshing it when needed.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// Refresh forces a refresh grant regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return errors.New("access token expired and no refresh token available")
	}

	tokens, err := s.client.RefreshGrant(ctx, s.refreshToken, s.accessToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refreshToken = tokens.RefreshToken
	}
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - expiryBuffer)
	return nil
}

// RefreshToken returns the refresh token backing the session.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Revoke deletes the refresh token and then the access token, ending the
// session.
func (s *Session) Revoke(ctx context.Context) error {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}

	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh != "" {
		if err := s.client.RevokeToken(ctx, access, refresh, "refresh_token"); err != nil {
			return err
		}
	}
	return s.client.RevokeToken(ctx, access, access, "access_token")
}
