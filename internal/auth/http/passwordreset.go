package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

const (
	msgPasswordChanged = "Password changed successfully."
	msgResetSent       = "Check your email for further instructions."
)

// PasswordResetHandler serves both halves of the reset flow.
type PasswordResetHandler struct {
	Resets   *service.ResetService
	Guard    *bruteforce.Guard
	ClientIP httpx.KeyExtractor
}

// HandleReset godoc
//
//	@Summary		Reset Password
//	@Description	Sets a new password using a reset token. All tokens of the user are revoked.
//	@Tags			Password Reset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetRequest	true	"token, newPassword, ne2Password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"BadRequestError"
//	@Failure		422		{object}	authsdk.ErrorResponse	"ValidationError"
//	@Failure		429		{object}	authsdk.ErrorResponse	"TooManyRequestsError"
//	@Failure		500		{object}	authsdk.ErrorResponse	"InternalServerError"
//	@Router			/authentication/passwordreset [put].
func (h *PasswordResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.PasswordResetRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PasswordReset) == 0 {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}
	in := req.PasswordReset[0]

	key := clientIP(h.ClientIP, r)
	if err := h.Guard.Attempt(ctx, key); err != nil {
		writeServiceError(w, r, err, "brute-force check failed")
		return
	}

	err := h.Resets.ResetPassword(ctx, in.Token, in.NewPassword, in.NePassword2)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidResetToken) && !errors.Is(err, service.ErrExpiredResetToken) {
			releaseAttempt(r, h.Guard, key)
		}
		writeServiceError(w, r, err, "password reset failed")
		return
	}

	releaseAttempt(r, h.Guard, key)
	writeMessage(w, msgPasswordChanged)
}

// HandleRequest godoc
//
//	@Summary		Request Password Reset
//	@Description	Generates a reset token for the account and hands it to the configured notifier.
//	@Tags			Password Reset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetLinkRequest	true	"email"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"BadRequestError"
//	@Failure		404		{object}	authsdk.ErrorResponse	"NotFoundError"
//	@Failure		429		{object}	authsdk.ErrorResponse	"TooManyRequestsError"
//	@Failure		500		{object}	authsdk.ErrorResponse	"InternalServerError"
//	@Router			/authentication/passwordreset [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.ResetLinkRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PasswordReset) == 0 {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	key := clientIP(h.ClientIP, r)
	if err := h.Guard.Attempt(ctx, key); err != nil {
		writeServiceError(w, r, err, "brute-force check failed")
		return
	}

	if err := h.Resets.RequestReset(ctx, req.PasswordReset[0].Email); err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			releaseAttempt(r, h.Guard, key)
		}
		writeServiceError(w, r, err, "password reset request failed")
		return
	}

	releaseAttempt(r, h.Guard, key)
	writeMessage(w, msgResetSent)
}

func writeMessage(w http.ResponseWriter, msg string) {
	httpx.Private(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		PasswordReset: []authsdk.Message{{Message: msg}},
	})
}
