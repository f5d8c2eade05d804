package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/domain"
	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct horse battery"
)

type notifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *notifier) SendResetLink(_ context.Context, _ domain.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}

type testServer struct {
	router   *Router
	store    *sqlite.Store
	notifier *notifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets configure adjust the router before routes are bound.
func newTestServerWith(t *testing.T, configure func(*Router)) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	boot := &service.BootstrapService{Store: st, OwnerEmail: ownerEmail, OwnerPassword: ownerPassword}
	require.NoError(t, boot.Seed(ctx))

	n := &notifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter("test", st, logger)
	r.TokenService = &service.TokenService{Store: st}
	r.CredentialService = &service.CredentialService{Store: st}
	r.ResetService = &service.ResetService{Store: st, Notifier: n}
	r.Guard = bruteforce.NewGuard(bruteforce.NewMemoryStore(), bruteforce.DefaultLimit, bruteforce.DefaultWindow)
	if configure != nil {
		configure(r)
	}
	r.ApplyRoutes()

	return &testServer{router: r, store: st, notifier: n}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func passwordRequest(t *testing.T, email, password string) *http.Request {
	return jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{
		GrantType:    "password",
		Username:     email,
		Password:     password,
		ClientID:     service.DefaultAdminClientID,
		ClientSecret: service.DefaultAdminClientSecret,
	})
}

func refreshRequest(t *testing.T, refresh, bearer string) *http.Request {
	req := jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: refresh,
		ClientID:     service.DefaultAdminClientID,
		ClientSecret: service.DefaultAdminClientSecret,
	})
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func decodeTokens(t *testing.T, rec *httptest.ResponseRecorder) authsdk.TokenResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out authsdk.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, errorType string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, httpx.PrivateCacheControl, rec.Header().Get("Cache-Control"))

	var env authsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Errors, 1)
	require.Equal(t, errorType, env.Errors[0].ErrorType)
	require.NotEmpty(t, env.Errors[0].Message)
}

func TestPasswordGrant(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, passwordRequest(t, ownerEmail, ownerPassword))
	tok := decodeTokens(t, rec)

	require.NotEmpty(t, tok.AccessToken)
	require.NotEmpty(t, tok.RefreshToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, int(service.DefaultAccessTTL.Seconds()), tok.ExpiresIn)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Empty(t, rec.Header().Get("X-Cache-Invalidate"))
}

func TestPasswordGrantForm(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"grant_type":    {"password"},
		"username":      {ownerEmail},
		"password":      {ownerPassword},
		"client_id":     {service.DefaultAdminClientID},
		"client_secret": {service.DefaultAdminClientSecret},
	}
	req := httptest.NewRequest(http.MethodPost, "/authentication/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	tok := decodeTokens(t, s.do(t, req))
	require.NotEmpty(t, tok.RefreshToken)
}

func TestTokenEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		req       func(t *testing.T) *http.Request
		status    int
		errorType string
	}{
		{
			name:      "unknown user",
			req:       func(t *testing.T) *http.Request { return passwordRequest(t, "nobody@example.com", "whatever") },
			status:    http.StatusNotFound,
			errorType: authsdk.ErrorTypeNotFound,
		},
		{
			name:      "wrong password",
			req:       func(t *testing.T) *http.Request { return passwordRequest(t, ownerEmail, "wrong") },
			status:    http.StatusUnauthorized,
			errorType: authsdk.ErrorTypeUnauthorized,
		},
		{
			name: "bad client secret",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{
					GrantType: "password", Username: ownerEmail, Password: ownerPassword,
					ClientID: service.DefaultAdminClientID, ClientSecret: "nope",
				})
			},
			status:    http.StatusForbidden,
			errorType: authsdk.ErrorTypeNoPermission,
		},
		{
			name: "unsupported grant",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{GrantType: "client_credentials"})
			},
			status:    http.StatusBadRequest,
			errorType: authsdk.ErrorTypeBadRequest,
		},
		{
			name: "missing grant",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, http.MethodPost, "/authentication/token", map[string]string{})
			},
			status:    http.StatusBadRequest,
			errorType: authsdk.ErrorTypeBadRequest,
		},
		{
			name: "missing password",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{GrantType: "password", Username: ownerEmail})
			},
			status:    http.StatusBadRequest,
			errorType: authsdk.ErrorTypeBadRequest,
		},
		{
			name: "malformed json",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/authentication/token", strings.NewReader("{"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			status:    http.StatusBadRequest,
			errorType: authsdk.ErrorTypeBadRequest,
		},
		{
			name: "unknown refresh token",
			req: func(t *testing.T) *http.Request {
				return refreshRequest(t, "bogus", "")
			},
			status:    http.StatusForbidden,
			errorType: authsdk.ErrorTypeNoPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireAPIError(t, s.do(t, tt.req(t)), tt.status, tt.errorType)
		})
	}
}

func TestPasswordGrantLockout(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < bruteforce.DefaultLimit; i++ {
		requireAPIError(t, s.do(t, passwordRequest(t, ownerEmail, "wrong")), http.StatusUnauthorized, authsdk.ErrorTypeUnauthorized)
	}

	// correct password is refused while locked
	rec := s.do(t, passwordRequest(t, ownerEmail, ownerPassword))
	requireAPIError(t, rec, http.StatusTooManyRequests, authsdk.ErrorTypeTooManyRequests)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// the key includes the username, so another account is unaffected
	requireAPIError(t, s.do(t, passwordRequest(t, "someone@example.com", "x")), http.StatusNotFound, authsdk.ErrorTypeNotFound)

	// and so is another client address
	req := passwordRequest(t, ownerEmail, ownerPassword)
	req.RemoteAddr = "198.51.100.7:4000"
	decodeTokens(t, s.do(t, req))
}

func TestPasswordGrantSuccessResetsCounter(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < bruteforce.DefaultLimit-1; i++ {
		s.do(t, passwordRequest(t, ownerEmail, "wrong"))
	}
	decodeTokens(t, s.do(t, passwordRequest(t, ownerEmail, ownerPassword)))

	for i := 0; i < bruteforce.DefaultLimit-1; i++ {
		requireAPIError(t, s.do(t, passwordRequest(t, ownerEmail, "wrong")), http.StatusUnauthorized, authsdk.ErrorTypeUnauthorized)
	}
}

func badClientRequest(t *testing.T, email, password string) *http.Request {
	return jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{
		GrantType:    "password",
		Username:     email,
		Password:     password,
		ClientID:     "bogus",
		ClientSecret: "bogus",
	})
}

func TestPasswordGrantChecksClientFirst(t *testing.T) {
	s := newTestServer(t)

	// no user or password oracle behind a bad client
	requireAPIError(t, s.do(t, badClientRequest(t, "nobody@example.com", "whatever")), http.StatusForbidden, authsdk.ErrorTypeNoPermission)
	requireAPIError(t, s.do(t, badClientRequest(t, ownerEmail, "wrong")), http.StatusForbidden, authsdk.ErrorTypeNoPermission)
	requireAPIError(t, s.do(t, badClientRequest(t, ownerEmail, ownerPassword)), http.StatusForbidden, authsdk.ErrorTypeNoPermission)

	missing := jsonRequest(t, http.MethodPost, "/authentication/token", authsdk.TokenRequest{
		GrantType: "password", Username: "nobody@example.com", Password: "whatever", ClientID: "bogus",
	})
	requireAPIError(t, s.do(t, missing), http.StatusForbidden, authsdk.ErrorTypeNoPermission)
}

func TestPasswordGrantBadClientKeepsCounter(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < bruteforce.DefaultLimit-1; i++ {
		requireAPIError(t, s.do(t, passwordRequest(t, ownerEmail, "wrong")), http.StatusUnauthorized, authsdk.ErrorTypeUnauthorized)
	}

	// a correct password behind a bad client must not clear the failures
	requireAPIError(t, s.do(t, badClientRequest(t, ownerEmail, ownerPassword)), http.StatusForbidden, authsdk.ErrorTypeNoPermission)

	requireAPIError(t, s.do(t, passwordRequest(t, ownerEmail, "wrong")), http.StatusUnauthorized, authsdk.ErrorTypeUnauthorized)
	requireAPIError(t, s.do(t, passwordRequest(t, ownerEmail, ownerPassword)), http.StatusTooManyRequests, authsdk.ErrorTypeTooManyRequests)
}

func TestPasswordGrantIgnoresSpoofedForwardedFor(t *testing.T) {
	s := newTestServer(t)

	codes := map[int]int{}
	for i := 0; i < bruteforce.DefaultLimit+5; i++ {
		req := passwordRequest(t, ownerEmail, "wrong")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		codes[s.do(t, req).Code]++
	}

	require.Equal(t, map[int]int{
		http.StatusUnauthorized:    bruteforce.DefaultLimit,
		http.StatusTooManyRequests: 5,
	}, codes)
}

func TestPasswordGrantTrustedProxy(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies("10.0.0.0/8")
	require.NoError(t, err)
	s := newTestServerWith(t, func(r *Router) { r.Proxies = proxies })

	fromClient := func(password, client string) *http.Request {
		req := passwordRequest(t, ownerEmail, password)
		req.RemoteAddr = "10.0.0.2:4000"
		req.Header.Set("X-Forwarded-For", client)
		return req
	}

	for i := 0; i < bruteforce.DefaultLimit; i++ {
		requireAPIError(t, s.do(t, fromClient("wrong", "203.0.113.5")), http.StatusUnauthorized, authsdk.ErrorTypeUnauthorized)
	}
	requireAPIError(t, s.do(t, fromClient(ownerPassword, "203.0.113.5")), http.StatusTooManyRequests, authsdk.ErrorTypeTooManyRequests)

	// the proxy itself is not locked, only the client behind it
	decodeTokens(t, s.do(t, fromClient(ownerPassword, "203.0.113.6")))
}

func TestPasswordGrantConcurrentLockout(t *testing.T) {
	const limit = 5
	s := newTestServerWith(t, func(r *Router) { r.Guard.Limit = limit })

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)
	reqs := make([]*http.Request, 12)
	for i := range reqs {
		reqs[i] = passwordRequest(t, ownerEmail, "wrong")
	}

	for _, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			mu.Lock()
			codes[rec.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, map[int]int{
		http.StatusUnauthorized:    limit,
		http.StatusTooManyRequests: 12 - limit,
	}, codes)
}

func TestRefreshGrant(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	first := decodeTokens(t, s.do(t, passwordRequest(t, ownerEmail, ownerPassword)))

	rec := s.do(t, refreshRequest(t, first.RefreshToken, first.AccessToken))
	second := decodeTokens(t, rec)
	require.NotEmpty(t, second.AccessToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotContains(t, rec.Body.String(), "refresh_token")
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	old, err := s.store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(first.AccessToken))
	require.NoError(t, err)
	require.Less(t, time.Until(old.ExpiresAt), 6*time.Minute)

	fresh, err := s.store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(second.AccessToken))
	require.NoError(t, err)
	require.Greater(t, time.Until(fresh.ExpiresAt), 59*time.Minute)
}

func TestRevoke(t *testing.T) {
	s := newTestServer(t)

	tok := decodeTokens(t, s.do(t, passwordRequest(t, ownerEmail, ownerPassword)))

	unauth := jsonRequest(t, http.MethodPost, "/authentication/revoke", authsdk.RevokeRequest{Token: tok.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, s.do(t, unauth).Code)

	req := jsonRequest(t, http.MethodPost, "/authentication/revoke", authsdk.RevokeRequest{
		Token:         tok.RefreshToken,
		TokenTypeHint: "refresh_token",
	})
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	requireAPIError(t, s.do(t, refreshRequest(t, tok.RefreshToken, "")), http.StatusForbidden, authsdk.ErrorTypeNoPermission)
}

func TestPasswordReset(t *testing.T) {
	s := newTestServer(t)

	tok := decodeTokens(t, s.do(t, passwordRequest(t, ownerEmail, ownerPassword)))

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/authentication/passwordreset", authsdk.ResetLinkRequest{
		PasswordReset: []authsdk.ResetLink{{Email: ownerEmail}},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, s.notifier.tokens, 1)
	resetToken := s.notifier.tokens[0]

	reset := func(token, pw, pw2 string) *httptest.ResponseRecorder {
		return s.do(t, jsonRequest(t, http.MethodPut, "/authentication/passwordreset", authsdk.PasswordResetRequest{
			PasswordReset: []authsdk.PasswordReset{{Token: token, NewPassword: pw, NePassword2: pw2}},
		}))
	}

	requireAPIError(t, reset(resetToken, "new-password-1", "new-password-2"), http.StatusUnprocessableEntity, authsdk.ErrorTypeValidation)
	requireAPIError(t, reset("garbage", "new-password-1", "new-password-1"), http.StatusBadRequest, authsdk.ErrorTypeBadRequest)

	rec = reset(resetToken, "new-password-1", "new-password-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, httpx.PrivateCacheControl, rec.Header().Get("Cache-Control"))

	var msg authsdk.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Len(t, msg.PasswordReset, 1)
	require.NotEmpty(t, msg.PasswordReset[0].Message)

	// token pair issued before the reset is dead
	requireAPIError(t, s.do(t, refreshRequest(t, tok.RefreshToken, "")), http.StatusForbidden, authsdk.ErrorTypeNoPermission)

	// reset token cannot be replayed
	requireAPIError(t, reset(resetToken, "new-password-3", "new-password-3"), http.StatusBadRequest, authsdk.ErrorTypeBadRequest)

	decodeTokens(t, s.do(t, passwordRequest(t, ownerEmail, "new-password-1")))
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/authentication/passwordreset", authsdk.ResetLinkRequest{
		PasswordReset: []authsdk.ResetLink{{Email: "nobody@example.com"}},
	}))
	requireAPIError(t, rec, http.StatusNotFound, authsdk.ErrorTypeNotFound)
	require.Empty(t, s.notifier.tokens)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var out authsdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Equal(t, "ok", out.Status)
		require.Equal(t, "test", out.Version)
	}
}

func TestReadyzReportsClosedStore(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Close())

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
