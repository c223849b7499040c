package main

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patient-activation/config"
	"patient-activation/handlers"
	"patient-activation/storage"
	"patient-activation/utilities"
)

// NewRouter wires the API, probes and metrics over store.
func NewRouter(cfg config.ServerConfig, store storage.Store) http.Handler {
	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware)

	r.HandleFunc("/healthz", handlers.Healthz).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", handlers.Readyz(store)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handlers.NewObjectiveHandler(store).Register(r)

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"})
	methods := gorillahandlers.AllowedMethods([]string{
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	})

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
		utilities.LogInfo("CORS_ALLOWED_ORIGINS not set, allowing every origin")
	}
	utilities.LogInfo("CORS allowed origins: %v", allowedOrigins)

	return gorillahandlers.CORS(headers, methods, gorillahandlers.AllowedOrigins(allowedOrigins))(r)
}
