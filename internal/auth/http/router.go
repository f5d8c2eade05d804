package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"

	_ "github.com/aussiebroadwan/pressauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService      *service.TokenService
	CredentialService *service.CredentialService
	ResetService      *service.ResetService
	Guard             *bruteforce.Guard

	// Proxies whose forwarding headers name the client. Nil trusts none.
	Proxies httpx.TrustedProxies
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		slogx.RecoverMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuthentication()
	r.registerPasswordReset()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			PressAuth Authentication API
//	@version		0.1.0
//	@description	Opaque bearer token authentication for the admin API: password and refresh_token grants, revocation and password reset.
//	@description
//	@description				Failed requests return {"errors":[{"message":"...","errorType":"..."}]}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/pressauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuthentication() {
	// POST /token - strict rate limit by IP on top of the per-account guard
	tokenHandler := &TokenHandler{
		Tokens:      r.TokenService,
		Credentials: r.CredentialService,
		Guard:       r.Guard,
		ClientIP:    r.Proxies.ClientIP,
	}
	r.Mux.Handle("POST /authentication/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit, r.Proxies),
		),
	)

	// POST /revoke - bearer token required, moderate limit per user
	revokeHandler := &RevokeHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /authentication/revoke",
		httpx.Chain(revokeHandler,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.Proxies),
		),
	)
}

func (r *Router) registerPasswordReset() {
	h := &PasswordResetHandler{Resets: r.ResetService, Guard: r.Guard, ClientIP: r.Proxies.ClientIP}

	r.Mux.Handle("PUT /authentication/passwordreset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit, r.Proxies),
		),
	)
	r.Mux.Handle("POST /authentication/passwordreset",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIP(httpx.StrictLimit, r.Proxies),
		),
	)
}

func (r *Router) registerSystem() {
	// monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit, r.Proxies),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Guard),
			httpx.RateLimitByIP(httpx.LenientLimit, r.Proxies),
		),
	)
}
