package handlers

import (
	"context"
	"net/http"
	"time"

	"patient-activation/storage"
	"patient-activation/utilities"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings the store when it supports it.
func Readyz(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(storage.Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				utilities.LogError(err, "readiness check")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "storage_not_ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
