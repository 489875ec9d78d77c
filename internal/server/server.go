package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/idlegarden/internal/database"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/handler"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/metrics"
	"github.com/osse101/idlegarden/internal/sse"
)

// Config holds HTTP surface settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	RateLimitRPS   float64
	RateLimitBurst int
	IdempotencyTTL time.Duration
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
	gardenSvc  garden.Service
	hub        *sse.Hub
}

// NewServer creates a new Server instance. dbPool may be nil when running on the memory store.
func NewServer(cfg Config, dbPool database.Pool, gardenSvc garden.Service, hub *sse.Hub) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, dbPool, gardenSvc, hub),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		dbPool:    dbPool,
		gardenSvc: gardenSvc,
		hub:       hub,
	}
}

// NewRouter builds the full route tree
func NewRouter(cfg Config, dbPool database.Pool, gardenSvc garden.Service, hub *sse.Hub) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()
	limiter := NewUserRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(cfg.TrustedProxies, detector))
	r.Use(RateLimitMiddleware(limiter, cfg.TrustedProxies))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		gardenHandler := handler.NewGardenHandler(gardenSvc)
		r.Route("/garden", func(r chi.Router) {
			r.Get("/state", gardenHandler.GetState)
			r.Post("/harvest", gardenHandler.Harvest)
			r.Post("/plant", gardenHandler.Plant)
			r.Get("/cooldown", gardenHandler.GetCooldown)
			r.Post("/grant", gardenHandler.Grant)
			r.Get("/events", sse.Handler(hub))
		})

		r.Route("/admin/garden", func(r chi.Router) {
			r.Post("/upgrade", handler.HandleAddUpgrade(gardenSvc))
			r.Post("/tier", handler.HandleSetTier(gardenSvc))
			r.Post("/purge", handler.HandlePurge(gardenSvc, cfg.IdempotencyTTL))
		})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps event streams working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := logger.WithRequestID(r.Context(), requestID)
		if userID := r.Header.Get(HeaderUserID); userID != "" {
			ctx = logger.WithUserID(ctx, userID)
		}
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully. Event streams are closed first so Shutdown does not wait on them.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
