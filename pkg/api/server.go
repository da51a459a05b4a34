// Package api exposes the param codec as a small HTTP conversion
// service: upload a binary param file and get the XML editing form back,
// or the reverse. The label dictionary is injected at startup and treated
// as an immutable snapshot for the life of the server.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skadi-tools/paramkit/pkg/hash40"
)

// StartServer starts the HTTP server with all routes configured
func StartServer(table hash40.Table, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(table, config, metrics)

	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Conversions
		r.Post("/disasm", metrics.InstrumentHandler("POST", "/api/v1/disasm", server.handleDisasm))
		r.Post("/asm", metrics.InstrumentHandler("POST", "/api/v1/asm", server.handleAsm))

		// Dictionary
		r.Get("/labels/{hash}", metrics.InstrumentHandler("GET", "/api/v1/labels/{hash}", server.handleLabel))
	})

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	slog.Info("paramkit API listening", "addr", addr)
	return http.ListenAndServe(addr, r)
}
