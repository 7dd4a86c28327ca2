// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-agentdesk/internal/auth"
	"github.com/iyunix/go-agentdesk/internal/config"
	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/handlers"
	"github.com/iyunix/go-agentdesk/internal/logging"
	"github.com/iyunix/go-agentdesk/internal/ratelimit"
	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/repository/kv"
	"github.com/iyunix/go-agentdesk/internal/repository/user"
	"github.com/iyunix/go-agentdesk/internal/services/ai"
	"github.com/iyunix/go-agentdesk/internal/services/chat"
	"github.com/iyunix/go-agentdesk/internal/services/retention"
	"github.com/iyunix/go-agentdesk/internal/services/user_services"
)

func main() {
	cfg := config.Load()
	newLogger := func(service string) logging.Logger {
		return logging.NewLogger(service, cfg.Environment, cfg.LogLevel)
	}
	logger := newLogger("server")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Persistence ---
	kind, err := kv.ParseKind(cfg.KVBackend)
	if err != nil {
		log.Fatalf("KV Error: %v", err)
	}
	backend, err := kv.Open(kind, kv.Options{DB: db, PebblePath: cfg.PebblePath, RedisURL: cfg.RedisURL})
	if err != nil {
		log.Fatalf("KV Error: %v", err)
	}
	defer backend.Close()

	userRepo := user.NewGormUserRepository(db)
	conversations := conversation.NewStore(kv.NewStore(backend, newLogger("kv")), newLogger("conversations"), conversation.Config{
		MaxConversations: cfg.MaxConversations,
	})

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.Provider = ai.Provider(cfg.ResponderProvider)
	aiConfig.LLMKey = cfg.LLMAPIKey
	aiConfig.LLMBaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.SystemPrompt = cfg.SystemPrompt
	aiConfig.AgentURL = cfg.AgentAPIURL
	aiConfig.AgentKey = cfg.AgentAPIKey
	aiConfig.Timeout = cfg.ResponderAttemptTimeout
	aiConfig.MaxRetries = cfg.ResponderMaxRetries
	responder, err := ai.NewResponder(aiConfig, newLogger("responder"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize responder: %v", err)
	}

	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, auth.DefaultTokenTTL, newLogger("auth"))
	sessions := chat.NewManager(&chat.Config{ResponderTimeout: cfg.ResponderTimeout}, conversations, responder, newLogger("chat"))

	retentionService, err := retention.NewService(retention.Config{
		Cron:   cfg.TrashRetentionCron,
		MaxAge: time.Duration(cfg.TrashRetentionDays) * 24 * time.Hour,
	}, userRepo, conversations, newLogger("retention"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trash retention: %v", err)
	}

	loginLimiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    cfg.LoginWindow,
		MaxAttempts:   cfg.LoginMaxAttempts,
		CleanupPeriod: 2 * cfg.LoginWindow,
		BanDuration:   cfg.LoginBan,
	})
	defer loginLimiter.Close()

	// --- Router Setup ---
	httpLogger := newLogger("http")
	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:          handlers.NewAuthHandler(authService, auth.DefaultTokenTTL, cfg.IsProduction(), httpLogger),
		Conversations: handlers.NewConversationHandler(conversations, httpLogger),
		Trash:         handlers.NewTrashHandler(conversations, httpLogger),
		Chat:          handlers.NewChatHandler(sessions, httpLogger),
		Tokens:        authService,
		LoginLimiter:  loginLimiter,
		Logger:        httpLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stopRetention := context.WithCancel(context.Background())
	defer stopRetention()
	retentionService.Start(ctx)

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
		"kv_backend", string(kind),
		"responder", cfg.ResponderProvider,
		"max_conversations", cfg.MaxConversations,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	stopRetention()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
