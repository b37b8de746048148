package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
// Admin routes require a bearer token when adminAPIKey is set.
func NewServer(port string, paths PathReader, pairs PairManager, recomputer Recomputer, metrics http.Handler, adminAPIKey string) *http.Server {
	handler := NewHandler(paths, pairs, recomputer)

	admin := func(h http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return h
		}
		return requireAuth(adminAPIKey, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/paths", handler.ListPaths)
	mux.HandleFunc("GET /api/v1/paths/{source}/{target}", handler.GetPath)
	mux.HandleFunc("GET /api/v1/monitored-pairs", handler.ListMonitoredPairs)
	mux.Handle("POST /api/v1/monitored-pairs", admin(handler.SubmitMonitoredPairs))
	mux.Handle("POST /api/v1/recompute", admin(handler.Recompute))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
