package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ses9892/rag/internal/api"
	"github.com/ses9892/rag/internal/chat"
	"github.com/ses9892/rag/internal/config"
	"github.com/ses9892/rag/internal/llm"
	"github.com/ses9892/rag/internal/memory"
	"github.com/ses9892/rag/internal/middleware"
	iredis "github.com/ses9892/rag/internal/redis"
	"github.com/ses9892/rag/internal/server"
	"github.com/ses9892/rag/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// Redis (optional, backs the chat rate limiter)
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	// Model provider
	provider := llm.NewOpenAIProvider(cfg.LLM)

	// Session memory + conversation service
	store := memory.NewStore(cfg.Chat.MemoryWindow)
	chatSvc := chat.NewService(store, provider, cfg.Chat.SystemPrompt)

	// Transport handlers
	chatHandler := chat.NewHandler(chatSvc, cfg.Chat.DefaultSession)
	memoryHandler := memory.NewHandler(store)
	registry := ws.NewRegistry()
	wsHandler := ws.NewHandler(chatSvc, registry)
	wsStatusHandler := ws.NewStatusHandler(registry)

	var chatRateLimiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && redisClient != nil {
		rl := middleware.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec)
		chatRateLimiter = rl.Middleware
	}

	var redisHealthy func(r *http.Request) bool
	if redisClient != nil {
		redisHealthy = func(r *http.Request) bool {
			return iredis.Healthy(r.Context(), redisClient)
		}
	}

	// Router
	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
	}, api.HandlerSet{
		Chat:           chatHandler.Chat,
		ChatStream:     chatHandler.ChatStream,
		ChatTest:       chatHandler.Test,
		ChatTestStream: chatHandler.TestStream,

		GetMemory:     memoryHandler.Get,
		ClearMemory:   memoryHandler.Clear,
		ClearAll:      memoryHandler.ClearAll,
		MemoryStatus:  memoryHandler.Status,
		RemoveSession: memoryHandler.Remove,

		WSChat:      wsHandler,
		WSStatus:    wsStatusHandler.Status,
		WSBroadcast: wsStatusHandler.BroadcastTest,

		ChatRateLimiter: chatRateLimiter,
		RedisHealthy:    redisHealthy,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
