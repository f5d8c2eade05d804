package httpx

import (
	"encoding/json"
	"net/http"
)

// PrivateCacheControl is sent on user specific responses and on every error.
const PrivateCacheControl = "no-cache, private, no-store, must-revalidate, max-stale=0, post-check=0, pre-check=0"

// WriteJSON writes v as JSON with the given status code. Responses default to
// no-store unless the handler already picked a cache policy.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	if w.Header().Get("Cache-Control") == "" {
		NoStore(w)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoStore forbids any cache from keeping the response. Used for token payloads.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Private marks the response as user specific.
func Private(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", PrivateCacheControl)
}

type errorItem struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
}

// WriteErrors writes the {"errors":[{message,errorType}]} envelope with the
// private cache policy.
func WriteErrors(w http.ResponseWriter, code int, errorType, message string) {
	Private(w)
	w.Header().Del("Pragma")
	WriteJSON(w, code, map[string][]errorItem{
		"errors": {{Message: message, ErrorType: errorType}},
	})
}
