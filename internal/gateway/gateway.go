// Package gateway exposes the explore API as JSON over HTTP.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/oggyb/muzz-matcher/internal/logger"
	pb "github.com/oggyb/muzz-matcher/internal/proto/explore"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-Id"

// HealthCheck reports whether a backend is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	AllowedOrigins []string
	// Checks run on /healthz, keyed by backend name.
	Checks  map[string]HealthCheck
	Timeout time.Duration
}

// NewHandler routes HTTP calls to svc.
func NewHandler(svc pb.ExploreServiceServer, log *slog.Logger, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	h := &handlers{svc: svc, checks: opts.Checks}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.Timeout))
	r.Use(requestLogger(log))

	r.Get("/healthz", h.health)
	r.Route("/v1/users/{id}", func(r chi.Router) {
		r.Get("/candidates", h.candidates)
		r.Post("/actions", h.recordAction)
		r.Get("/matches", h.matches)
		r.Put("/location", h.updateLocation)
		r.Get("/liked-you", h.likedYou)
		r.Get("/liked-you/new", h.newLikedYou)
		r.Get("/liked-you/count", h.countLikedYou)
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Retry-After"},
	}).Handler(r)
}

type ctxKey struct{}

// RequestIDFrom returns the id assigned by the request-id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With("req_id", RequestIDFrom(r.Context()))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), reqLog)))
			reqLog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
