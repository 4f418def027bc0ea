// Package api exposes the HTTP interface for the insights service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
	"github.com/Akshatb2006/Linkedin-Insights/internal/telemetry"
)

// PageService is the slice of the service layer the handlers need.
type PageService interface {
	GetPage(ctx context.Context, pageID string, forceRefresh bool) (insights.Page, insights.Source, error)
	Search(ctx context.Context, query insights.PageQuery, offset, limit int) (insights.PageList, error)
	GetPosts(ctx context.Context, pageID string, offset, limit int) ([]insights.Post, int, error)
	GetComments(ctx context.Context, pageID string, offset, limit int) ([]insights.Comment, int, error)
	GetEmployees(ctx context.Context, pageID string, offset, limit int) ([]insights.Employee, int, error)
	DeletePage(ctx context.Context, pageID string) error
	Summarize(ctx context.Context, pageID string, includePosts, includeEmployees, skipCache bool) (insights.Summary, insights.Source, error)
	SummarizerInfo() (model string, available bool)
	CacheStats(ctx context.Context) (insights.CacheStats, error)
	ClearCache(ctx context.Context, prefix string) (int, error)
}

// Config tunes the HTTP surface.
type Config struct {
	// RequestTimeout bounds one request end to end. Scrapes are slow,
	// so this must exceed the scrape timeout.
	RequestTimeout time.Duration
	// AuthEnabled requires the API key on /api routes.
	AuthEnabled bool
	// APIKey is checked against X-API-Key or ?api_key=.
	APIKey string
	// DefaultLimit is the page size when the client sends none.
	DefaultLimit int
	// MaxLimit caps the client-requested page size.
	MaxLimit int
}

// Server wires HTTP handlers to the page service.
type Server struct {
	router  chi.Router
	service PageService
	logger  *zap.Logger
	cfg     Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(service PageService, logger *zap.Logger, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	telemetry.Init()

	s := &Server{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(apiKeyMiddleware(cfg.APIKey))
		}
		r.Route("/pages", func(r chi.Router) {
			r.Get("/", s.searchPages)
			r.Route("/{page_id}", func(r chi.Router) {
				r.Get("/", s.getPage)
				r.Delete("/", s.deletePage)
				r.Get("/posts", s.getPosts)
				r.Get("/comments", s.getComments)
				r.Get("/people", s.getEmployees)
			})
		})
		r.Route("/ai", func(r chi.Router) {
			r.Get("/summary/{page_id}", s.getSummary)
			r.Get("/providers", s.getProviders)
			r.Get("/cache/stats", s.getCacheStats)
			r.Delete("/cache/clear", s.clearCache)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// The cache layer is the only dependency with a cheap liveness probe;
	// postgres failures surface on first query.
	if _, err := s.service.CacheStats(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}
