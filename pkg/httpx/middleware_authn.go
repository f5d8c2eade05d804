package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// TokenAuthenticator resolves an opaque bearer token to the owning user ID.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (string, error)
}

// AuthnMiddleware rejects requests without a live bearer token and stores the
// resolved user in the request context.
func AuthnMiddleware(a TokenAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			userID, err := a.AuthenticateToken(ctx, raw)
			if err != nil {
				log.Warn("bearer token rejected", "err", err)
				writeBearerError(w, "access token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, userID, raw)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteErrors(w, http.StatusUnauthorized, "UnauthorizedError", desc)
}
