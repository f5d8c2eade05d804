package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// writeServiceError maps service and guard errors onto the error envelope.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var locked *bruteforce.LockedError

	switch {
	case errors.As(err, &locked):
		writeLocked(w, locked)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrWrongPassword):
		authsdk.ErrWrongPassword.WriteError(w)
	case errors.Is(err, service.ErrUserSuspended):
		authsdk.ErrUserSuspended.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrNoPermission):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrPasswordsMismatch):
		authsdk.ErrPasswordsMismatch.WriteError(w)
	case errors.Is(err, service.ErrPasswordTooShort):
		authsdk.ErrPasswordTooShort.WriteError(w)
	case errors.Is(err, service.ErrExpiredResetToken):
		authsdk.ErrExpiredResetToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		authsdk.ErrInvalidResetToken.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error(msg, "err", err)
		authsdk.ErrServer.WriteError(w)
	}
}

func writeLocked(w http.ResponseWriter, locked *bruteforce.LockedError) {
	secs := int(math.Ceil(locked.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	authsdk.ErrTooManyAttempts.WriteError(w)
}
