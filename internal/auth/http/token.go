package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// TokenHandler serves POST /authentication/token.
type TokenHandler struct {
	Tokens      *service.TokenService
	Credentials *service.CredentialService
	Guard       *bruteforce.Guard
	ClientIP    httpx.KeyExtractor
}

// ServeHTTP godoc
//
//	@Summary		Token Endpoint
//	@Description	Issues tokens for the password grant and a new access token for the refresh_token grant.
//	@Description	Accepts JSON or application/x-www-form-urlencoded bodies with the same field names.
//	@Tags			Authentication
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.TokenRequest	true	"grant_type is password or refresh_token"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token (password grant only), expires_in, token_type"
//	@Failure		400		{object}	authsdk.ErrorResponse	"BadRequestError"
//	@Failure		401		{object}	authsdk.ErrorResponse	"UnauthorizedError"
//	@Failure		403		{object}	authsdk.ErrorResponse	"NoPermissionError"
//	@Failure		404		{object}	authsdk.ErrorResponse	"NotFoundError"
//	@Failure		429		{object}	authsdk.ErrorResponse	"TooManyRequestsError"
//	@Failure		500		{object}	authsdk.ErrorResponse	"InternalServerError"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Header			429		{integer}	Retry-After				"seconds until the lockout ends"
//	@Router			/authentication/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g, apiErr := parseGrant(w, r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	switch g := g.(type) {
	case PasswordGrant:
		h.handlePasswordGrant(w, r, g)
	case RefreshGrant:
		h.handleRefreshGrant(w, r, g)
	default:
		authsdk.ErrUnsupportedGrant.WriteError(w)
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request, g PasswordGrant) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	client, err := h.Tokens.AuthenticateClient(ctx, g.ClientID, g.ClientSecret)
	if err != nil {
		writeServiceError(w, r, err, "client authentication failed")
		return
	}

	key := bruteforce.PasswordKey(clientIP(h.ClientIP, r), strings.ToLower(g.Username))
	if err := h.Guard.Attempt(ctx, key); err != nil {
		writeServiceError(w, r, err, "brute-force check failed")
		return
	}

	user, err := h.Credentials.VerifyCredentials(ctx, g.Username, g.Password)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) && !errors.Is(err, service.ErrWrongPassword) {
			releaseAttempt(r, h.Guard, key)
		}
		writeServiceError(w, r, err, "password grant failed")
		return
	}

	if err := h.Guard.Success(ctx, key); err != nil {
		log.Warn("failed to clear brute-force record", "err", err)
	}

	pair, err := h.Tokens.IssueForClient(ctx, user, client)
	if err != nil {
		writeServiceError(w, r, err, "password grant failed")
		return
	}

	writeTokenPair(w, pair)
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request, g RefreshGrant) {
	ctx := r.Context()
	key := clientIP(h.ClientIP, r)

	if err := h.Guard.Attempt(ctx, key); err != nil {
		writeServiceError(w, r, err, "brute-force check failed")
		return
	}

	pair, err := h.Tokens.Refresh(ctx, g.RefreshToken, g.ClientID, g.ClientSecret, g.AccessToken)
	if err != nil {
		if !errors.Is(err, service.ErrNoPermission) {
			releaseAttempt(r, h.Guard, key)
		}
		writeServiceError(w, r, err, "refresh grant failed")
		return
	}

	releaseAttempt(r, h.Guard, key)
	writeTokenPair(w, pair)
}

// releaseAttempt hands back a reservation whose outcome is not a failure.
func releaseAttempt(r *http.Request, guard *bruteforce.Guard, key string) {
	if err := guard.Release(r.Context(), key); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to release brute-force attempt", "key", key, "err", err)
	}
}

func clientIP(extract httpx.KeyExtractor, r *http.Request) string {
	if extract == nil {
		return httpx.TrustedProxies(nil).ClientIP(r)
	}
	return extract(r)
}

func writeTokenPair(w http.ResponseWriter, pair *domain.TokenPair) {
	httpx.NoStore(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		TokenType:    pair.TokenType,
	})
}
