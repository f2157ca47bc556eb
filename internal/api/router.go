package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/ses9892/rag/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Chat handlers
	Chat           http.HandlerFunc
	ChatStream     http.HandlerFunc
	ChatTest       http.HandlerFunc
	ChatTestStream http.HandlerFunc

	// Memory handlers
	GetMemory     http.HandlerFunc
	ClearMemory   http.HandlerFunc
	ClearAll      http.HandlerFunc
	MemoryStatus  http.HandlerFunc
	RemoveSession http.HandlerFunc

	// WebSocket
	WSChat      http.Handler
	WSStatus    http.HandlerFunc
	WSBroadcast http.HandlerFunc

	// Optional rate limiter in front of the chat endpoints
	ChatRateLimiter func(http.Handler) http.Handler

	// Readiness checks
	RedisHealthy func(r *http.Request) bool
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks Redis when configured
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status": "healthy",
			"redis":  "healthy",
		}
		status := http.StatusOK

		if h.RedisHealthy == nil {
			health["redis"] = "not configured"
		} else if !h.RedisHealthy(r) {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Chat endpoints — optionally rate-limited
	r.Route("/api/chat", func(r chi.Router) {
		if h.ChatRateLimiter != nil {
			r.Use(h.ChatRateLimiter)
		}
		r.Post("/", h.Chat)
		r.Post("/stream", h.ChatStream)
		r.Get("/test", h.ChatTest)
		r.Get("/test-stream", h.ChatTestStream)
	})

	// Memory endpoints
	r.Route("/api/memory", func(r chi.Router) {
		r.Get("/status", h.MemoryStatus)
		r.Delete("/all", h.ClearAll)
		r.Get("/{sessionID}", h.GetMemory)
		r.Delete("/{sessionID}", h.ClearMemory)
		r.Delete("/{sessionID}/remove", h.RemoveSession)
	})

	// WebSocket status endpoints
	r.Route("/api/ws", func(r chi.Router) {
		r.Get("/status", h.WSStatus)
		r.Get("/broadcast/test", h.WSBroadcast)
	})

	// WebSocket chat endpoint
	if h.WSChat != nil {
		r.Handle("/ws/chat", h.WSChat)
	}

	return r
}
