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

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/handler"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/metrics"
)

type Server struct {
	httpServer *http.Server
}

// Deps holds the handlers and health checker the router is built from.
type Deps struct {
	Quests  *handler.QuestHandler
	Events  *handler.EventHandler
	Admin   *handler.AdminHandler
	Checker handler.HealthChecker
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, deps Deps) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Checker))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Player quest routes
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Post("/join", deps.Quests.HandlePlayerJoin)
			r.Post("/quit", deps.Quests.HandlePlayerQuit)
			r.Get("/quests", deps.Quests.HandleGetActiveQuests)
			r.Get("/quests/{questID}", deps.Quests.HandleGetProgress)
			r.Post("/quests/{questID}/accept", deps.Quests.HandleAccept)
			r.Post("/quests/{questID}/claim", deps.Quests.HandleClaim)
			r.Get("/history", deps.Quests.HandleGetHistory)
			r.Post("/actions", deps.Quests.HandleAction)
			r.Post("/progress", deps.Quests.HandleExternalProgress)
			r.Post("/resets", deps.Quests.HandleProcessResets)
		})

		// Global event routes (read side)
		r.Route("/events", func(r chi.Router) {
			r.Get("/", deps.Events.HandleListEvents)
			r.Get("/active", deps.Events.HandleGetActiveEvent)
			r.Get("/multipliers", deps.Events.HandleGetMultipliers)
			r.Get("/display", deps.Events.HandleGetDisplay)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/events/{eventID}/start", deps.Events.HandleStartEvent)
			r.Post("/events/stop", deps.Events.HandleStopEvent)
			r.Post("/events/trigger", deps.Events.HandleTriggerRandomEvent)
			r.Post("/reload", deps.Admin.HandleReloadDefinitions)
			r.Get("/profiles/stats", deps.Admin.HandleGetStoreStats)
			r.Post("/profiles/flush", deps.Admin.HandleFlushProfiles)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
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
		statusCode:     http.StatusOK, // default status
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

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
