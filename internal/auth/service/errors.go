package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrUserSuspended = errors.New("user suspended")

	// ErrNoPermission covers every client or refresh token rejection.
	ErrNoPermission   = errors.New("no permission")
	ErrInvalidClient  = fmt.Errorf("%w: invalid client", ErrNoPermission)
	ErrInvalidRefresh = fmt.Errorf("%w: invalid refresh token", ErrNoPermission)

	ErrInvalidAccessToken = errors.New("invalid access token")

	ErrPasswordsMismatch  = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrExpiredResetToken  = errors.New("expired reset token")
	ErrResetNotConfigured = errors.New("installation secret missing")
)

// MinPasswordLength applies to passwords set through reset.
const MinPasswordLength = 8
