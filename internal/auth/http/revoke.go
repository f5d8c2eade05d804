package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

// RevokeHandler serves POST /authentication/revoke. It sits behind
// httpx.AuthnMiddleware, so the caller is known.
type RevokeHandler struct {
	Tokens *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Revoke Token
//	@Description	Deletes one access or refresh token owned by the caller. Unknown tokens are ignored.
//	@Tags			Authentication
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.RevokeRequest	true	"token and optional token_type_hint"
//	@Success		200		{object}	map[string]any			"empty object"
//	@Failure		400		{object}	authsdk.ErrorResponse	"BadRequestError"
//	@Failure		401		{object}	authsdk.ErrorResponse	"UnauthorizedError"
//	@Failure		500		{object}	authsdk.ErrorResponse	"InternalServerError"
//	@Router			/authentication/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrServer.WriteError(w)
		return
	}

	var req authsdk.RevokeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			authsdk.ErrInvalidBody.WriteError(w)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			authsdk.ErrInvalidBody.WriteError(w)
			return
		}
		req.Token = r.PostForm.Get("token")
		req.TokenTypeHint = r.PostForm.Get("token_type_hint")
	}

	if req.Token == "" {
		authsdk.ErrMissingCredentials.WriteError(w)
		return
	}

	if err := h.Tokens.Revoke(r.Context(), userID, req.Token, req.TokenTypeHint); err != nil {
		writeServiceError(w, r, err, "token revocation failed")
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
