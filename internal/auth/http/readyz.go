package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

// readyzProbeKey is looked up in the brute-force store to prove it answers.
const readyzProbeKey = "readyz"

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe reporting the token database and the brute-force store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	guard *bruteforce.Guard,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database:   "ok",
			BruteStore: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if guard == nil {
			checks.BruteStore = "error: not configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if _, _, err := guard.Store.Get(r.Context(), readyzProbeKey); err != nil {
			checks.BruteStore = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
