package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/lookup"
)

// TimezoneLookup answers a timezone request from raw query values.
type TimezoneLookup interface {
	Lookup(ctx context.Context, rawLat, rawLon string) (lookup.Outcome, error)
}

type errorBody struct {
	Error string `json:"error"`
}

// Server exposes the timezone endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /timezones, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, tz TimezoneLookup, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /timezones", s.handleTimezones(tz))
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleTimezones(tz TimezoneLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := tz.Lookup(r.Context(), q.Get("lat"), q.Get("lon"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if out.Mode == domain.ModeList {
			sharedobs.WriteJSON(w, http.StatusOK, out.Regions)
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, domain.RegionSummary{Name: out.Resolution.Region.Name})
	}
}

// writeError maps lookup errors to status codes. Client errors carry their
// message; anything else is reported as an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters), errors.Is(err, domain.ErrRegionNotFound):
		s.logger.Debug("timezone request rejected", "query", r.URL.RawQuery, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
