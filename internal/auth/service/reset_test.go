package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/resettoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *captureNotifier) SendResetLink(_ context.Context, _ domain.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *captureNotifier) last(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.tokens)
	return n.tokens[len(n.tokens)-1]
}

func newResetService(env *testEnv) (*ResetService, *captureNotifier) {
	n := &captureNotifier{}
	return &ResetService{
		Store:    env.store,
		Notifier: n,
		ResetTTL: 24 * time.Hour,
		Now:      env.clock.Now,
	}, n
}

func TestRequestReset(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	require.ErrorIs(t, svc.RequestReset(ctx, "nobody@example.com"), ErrUserNotFound)
	require.ErrorIs(t, svc.RequestReset(ctx, "  "), ErrUserNotFound)

	require.NoError(t, svc.RequestReset(ctx, "Owner@Example.com"))
	parts, err := resettoken.Decode(n.last(t))
	require.NoError(t, err)
	require.Equal(t, testEmail, parts.Email)
	require.True(t, env.clock.Now().Add(24*time.Hour).Equal(parts.ExpiresAt))
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	pair, err := env.tokens.Issue(ctx, env.user, testClient, testSecret)
	require.NoError(t, err)

	require.NoError(t, svc.RequestReset(ctx, testEmail))
	token := n.last(t)

	require.NoError(t, svc.ResetPassword(ctx, token, "brand-new-pass", "brand-new-pass"))

	_, err = env.creds.VerifyCredentials(ctx, testEmail, testPassword)
	require.ErrorIs(t, err, ErrWrongPassword)
	_, err = env.creds.VerifyCredentials(ctx, testEmail, "brand-new-pass")
	require.NoError(t, err)

	// all sessions are gone
	_, err = env.tokens.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidAccessToken)
	_, err = env.tokens.Refresh(ctx, pair.RefreshToken, testClient, testSecret, "")
	require.ErrorIs(t, err, ErrNoPermission)

	// single use
	err = svc.ResetPassword(ctx, token, "another-pass", "another-pass")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordValidation(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, testEmail))
	token := n.last(t)
	forged := resettoken.Generate(testEmail, env.clock.Now().Add(time.Hour), "other-secret", env.user.PasswordHash)

	tests := []struct {
		name      string
		token     string
		pw, pw2   string
		wantErr   error
		advanceBy time.Duration
	}{
		{name: "mismatch", token: token, pw: "password-one", pw2: "password-two", wantErr: ErrPasswordsMismatch},
		{name: "too short", token: token, pw: "short", pw2: "short", wantErr: ErrPasswordTooShort},
		{name: "garbage token", token: "garbage", pw: "long-enough", pw2: "long-enough", wantErr: ErrInvalidResetToken},
		{name: "foreign secret", token: forged, pw: "long-enough", pw2: "long-enough", wantErr: ErrInvalidResetToken},
		{name: "expired", token: token, pw: "long-enough", pw2: "long-enough", wantErr: ErrExpiredResetToken, advanceBy: 25 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.clock.Advance(tt.advanceBy)
			err := svc.ResetPassword(ctx, tt.token, tt.pw, tt.pw2)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := env.creds.VerifyCredentials(ctx, testEmail, testPassword)
	require.NoError(t, err)
}

func TestResetPasswordHashesOnlyVerifiedTokens(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	var hashed atomic.Int32
	svc.Hash = func(pw string) (string, error) {
		hashed.Add(1)
		return cryptox.HashPassword(pw)
	}

	secret, err := env.store.Settings().GetSetting(ctx, domain.SettingDBHash)
	require.NoError(t, err)

	require.NoError(t, svc.RequestReset(ctx, testEmail))
	token := n.last(t)

	rejected := []string{
		resettoken.Generate(testEmail, env.clock.Now().Add(time.Hour), "other-secret", env.user.PasswordHash),
		resettoken.Generate("ghost@example.com", env.clock.Now().Add(time.Hour), secret, "hash"),
		resettoken.Generate(testEmail, env.clock.Now().Add(-time.Minute), secret, env.user.PasswordHash),
	}
	for _, tok := range rejected {
		require.Error(t, svc.ResetPassword(ctx, tok, "long-enough", "long-enough"))
	}
	require.Zero(t, hashed.Load(), "rejected tokens never reach the hasher")

	require.NoError(t, svc.ResetPassword(ctx, token, "long-enough", "long-enough"))
	require.EqualValues(t, 1, hashed.Load())
}

func TestResetPasswordConcurrentSingleUse(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, testEmail))
	token := n.last(t)

	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw := fmt.Sprintf("concurrent-%d", i)
			if err := svc.ResetPassword(ctx, token, pw, pw); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrInvalidResetToken)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, ok.Load())
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newResetService(env)
	ctx := context.Background()

	secret, err := env.store.Settings().GetSetting(ctx, domain.SettingDBHash)
	require.NoError(t, err)

	token := resettoken.Generate("ghost@example.com", env.clock.Now().Add(time.Hour), secret, "hash")
	require.ErrorIs(t, svc.ResetPassword(ctx, token, "long-enough", "long-enough"), ErrInvalidResetToken)
}

func TestResetPasswordUnlocksAccount(t *testing.T) {
	env := newTestEnv(t)
	svc, n := newResetService(env)
	ctx := context.Background()

	locked := env.addUser(t, "locked@example.com", "password123", domain.UserLocked)
	require.NoError(t, svc.RequestReset(ctx, locked.Email))
	require.NoError(t, svc.ResetPassword(ctx, n.last(t), "fresh-password", "fresh-password"))

	u, err := env.creds.VerifyCredentials(ctx, locked.Email, "fresh-password")
	require.NoError(t, err)
	require.Equal(t, domain.UserActive, u.Status)
}

func TestResetLink(t *testing.T) {
	link, err := ResetLink("https://example.com/ghost/reset/", "abc-123")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/ghost/reset/abc-123/", link)

	link, err = ResetLink("", "abc")
	require.NoError(t, err)
	require.Equal(t, "/ghost/reset/abc/", link)
}
