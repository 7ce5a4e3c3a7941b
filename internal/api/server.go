// Package api provides the HTTP server for splitledger. It translates JSON
// requests into service calls and maps the validation vocabulary onto
// status codes, keeping every rejection reason and numeric detail intact
// for the client.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/service"
)

// Server is the splitledger HTTP API server.
type Server struct {
	groups         *service.GroupService
	expenses       *service.ExpenseService
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(groups *service.GroupService, expenses *service.ExpenseService) *Server {
	return &Server{groups: groups, expenses: expenses}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/groups", func(r chi.Router) {
		r.Post("/", s.handleCreateGroup)
		r.Get("/", s.handleListGroups)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", s.handleGetGroup)
			r.Delete("/", s.handleDeleteGroup)
			r.Post("/members", s.handleAddMembers)
			r.Get("/balances", s.handleGetBalances)
			r.Post("/expenses", s.handleRecordExpense)
			r.Get("/expenses", s.handleListExpenses)
			r.Post("/settlements", s.handleRecordSettlement)
		})
	})

	return r
}

// requestLogger logs every request with its duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
