package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/idx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "gone@example.com", "password123", domain.UserSuspended)
	env.addUser(t, "locked@example.com", "password123", domain.UserLocked)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", testEmail, testPassword, nil},
		{"email is case insensitive", "OWNER@Example.com", testPassword, nil},
		{"wrong password", testEmail, "nope", ErrWrongPassword},
		{"unknown email", "who@example.com", testPassword, ErrUserNotFound},
		{"suspended", "gone@example.com", "password123", ErrUserSuspended},
		{"locked", "locked@example.com", "password123", ErrUserSuspended},
		{"suspended with wrong password", "gone@example.com", "nope", ErrWrongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := env.creds.VerifyCredentials(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, env.user.ID, u.ID)
		})
	}
}

func TestVerifyCredentialsUpgradesBcrypt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("imported-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        "legacy@example.com",
		PasswordHash: string(legacy),
		Status:       domain.UserActive,
	}
	require.NoError(t, env.store.Users().CreateUser(ctx, u))

	_, err = env.creds.VerifyCredentials(ctx, u.Email, "wrong-pass")
	require.ErrorIs(t, err, ErrWrongPassword)

	got, err := env.creds.VerifyCredentials(ctx, u.Email, "imported-pass")
	require.NoError(t, err)
	require.False(t, cryptox.IsBcryptHash(got.PasswordHash))

	stored, err := env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, cryptox.IsBcryptHash(stored.PasswordHash))

	_, err = env.creds.VerifyCredentials(ctx, u.Email, "imported-pass")
	require.NoError(t, err)
}

func TestVerifyCredentialsUnreadableHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.Users().UpdatePasswordHash(ctx, env.user.ID, "plaintext"))

	_, err := env.creds.VerifyCredentials(ctx, testEmail, "plaintext")
	require.ErrorIs(t, err, ErrWrongPassword)
}
