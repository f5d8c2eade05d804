package slogx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables panic reporting. An empty DSN leaves Sentry disabled.
func InitSentry(dsn, env, release string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// RecoverMiddleware turns a panic into a 500 InternalServerError response,
// logs it and reports it to Sentry.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			stack := string(debug.Stack())
			hub := sentry.CurrentHub().Clone()
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetRequest(r)
				scope.SetExtra("stack", stack)
				hub.CaptureMessage(fmt.Sprintf("panic: %v", rec))
			})

			FromContext(r.Context()).Error("panic recovered",
				"panic", fmt.Sprint(rec),
				"stack", stack,
			)

			w.Header().Set("Cache-Control", "no-cache, private, no-store, must-revalidate, max-stale=0, post-check=0, pre-check=0")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string][]map[string]string{
				"errors": {{"message": "Internal server error", "errorType": "InternalServerError"}},
			})
		}()

		next.ServeHTTP(w, r)
	})
}
