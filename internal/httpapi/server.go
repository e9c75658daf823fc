package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"laned/internal/arbiter"
	"laned/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Lanes() []types.Lane
	Status() types.StatusResponse
	EnsureLane(ctx context.Context, laneID string) error
	Ready() bool
}

// NewMux builds the router for the daemon's HTTP surface.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Lanes godoc
	// @Summary List lanes
	// @Produce json
	// @Success 200 {object} types.LanesResponse
	// @Router /lanes [get]
	r.Get("/lanes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.LanesResponse{Lanes: svc.Lanes()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	// Status godoc
	// @Summary Arbiter status
	// @Produce json
	// @Success 200 {object} types.StatusResponse
	// @Router /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	// EnsureLane godoc
	// @Summary Make a lane active, switching the backend if needed
	// @Produce json
	// @Param laneID path string true "Lane id"
	// @Success 200 {object} types.EnsureResponse
	// @Failure 404 {object} types.ErrorResponse
	// @Failure 502 {object} types.ErrorResponse
	// @Failure 504 {object} types.ErrorResponse
	// @Router /lanes/{laneID}/ensure [post]
	r.Post("/lanes/{laneID}/ensure", func(w http.ResponseWriter, r *http.Request) {
		laneID := chi.URLParam(r, "laneID")
		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("lane", laneID)
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("ensure start")
			} else {
				log.Printf("ensure start lane=%s", laneID)
			}
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.EnsureLane(joinedCtx, laneID); err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				if zlog != nil {
					z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
					if rid := middleware.GetReqID(r.Context()); rid != "" {
						z = z.Str("request_id", rid)
					}
					z.Err(err).Msg("ensure end")
				} else {
					log.Printf("ensure end status=%d dur=%s err=%v", status, time.Since(start), err)
				}
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.EnsureResponse{
			Lane:  laneID,
			DurMs: time.Since(start).Milliseconds(),
		})
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("status", "200").Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("ensure end")
			} else {
				log.Printf("ensure end status=200 dur=%s", time.Since(start))
			}
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("switching"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// statusForError maps well-known arbiter errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case arbiter.IsUnknownLane(err):
		return http.StatusNotFound
	case arbiter.IsReloadBackend(err):
		return http.StatusBadGateway
	case arbiter.IsSwitchTimeout(err):
		return http.StatusGatewayTimeout
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
