package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fasterr/marketplace/internal/ai"
	"github.com/fasterr/marketplace/internal/featureflags"
	"github.com/fasterr/marketplace/internal/handler"
	"github.com/fasterr/marketplace/internal/infrastructure/logger"
	infraredis "github.com/fasterr/marketplace/internal/infrastructure/redis"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/observability/tracing"
	"github.com/fasterr/marketplace/internal/repository"
	"github.com/fasterr/marketplace/internal/security/auth"
	"github.com/fasterr/marketplace/internal/security/middleware"
	"github.com/fasterr/marketplace/internal/security/ratelimit"
	"github.com/fasterr/marketplace/internal/service"
	"github.com/fasterr/marketplace/internal/store"
	"github.com/fasterr/marketplace/internal/worker"
	"github.com/fasterr/marketplace/pkg/cache"
	"github.com/fasterr/marketplace/pkg/config"
	"github.com/fasterr/marketplace/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	log.Info("starting Fasterr server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "fasterr-marketplace", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
	} else {
		defer shutdownTracing(context.Background())
	}

	// 4. Pick the durable store: Redis when configured, local files otherwise
	var (
		kv          store.Store
		redisClient *infraredis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = infraredis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		kv = store.NewRedisStore(redisClient)
		log.Info("using redis store")
	} else {
		fileStore, err := store.NewFileStore(cfg.StorePath, cfg.StoreQuotaBytes, log)
		if err != nil {
			log.Error("failed to open file store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		kv = fileStore
		log.Info("using file store",
			slog.String("path", cfg.StorePath),
			slog.Int64("quota_bytes", cfg.StoreQuotaBytes),
		)
	}

	// 5. Connect the Postgres mirror
	dbPool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	if err := dbPool.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize repositories
	catalogRepo := repository.NewStoreCatalog(kv, log)
	favoriteRepo := repository.NewStoreFavorites(kv, log)
	reviewRepo := repository.NewStoreReviews(kv, log)
	chatRepo := repository.NewStoreChats(kv, log)
	mirrorCatalog := repository.NewPostgresCatalog(dbPool.GetDB(), log)
	accountRepo := repository.NewPostgresAccounts(dbPool.GetDB(), log)

	// 7. Seed the catalog
	if err := catalogRepo.EnsureSeeded(cfg.SeedCount, featureflags.Enabled(featureflags.Reseed)); err != nil {
		log.Error("failed to seed catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if products, err := catalogRepo.List(); err == nil {
		metrics.SetCatalogSize(len(products))
		log.Info("catalog ready", slog.Int("products", len(products)))
	}

	// 8. Initialize services
	genClient := ai.NewClient(ai.Config{
		Endpoint: cfg.GenAIEndpoint,
		APIKey:   cfg.GenAIKey,
		Model:    cfg.GenAIModel,
	}, log)
	appCache := cache.New()
	catalogService := service.NewCatalogService(catalogRepo, favoriteRepo, genClient, log)
	suggester := service.NewSuggester(catalogRepo, appCache, 30*time.Second)
	reputation := service.NewReputationService(catalogRepo, reviewRepo, appCache, log)

	scheduler := worker.NewReplyScheduler(log)
	conversations := service.NewConversations(chatRepo, catalogRepo, scheduler, service.ConversationConfig{
		ReplyDelay:       cfg.ReplyDelay,
		NotificationTTL:  cfg.NotificationTTL,
		DisableAutoReply: featureflags.Enabled(featureflags.DisableAutoReply),
	}, log)

	// 9. Initialize handlers and security components
	productsHandler := handler.NewProductsHandler(mirrorCatalog, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, suggester, log)
	favoritesHandler := handler.NewFavoritesHandler(catalogService, log)
	sellersHandler := handler.NewSellersHandler(reputation, log)
	threadsHandler := handler.NewThreadsHandler(conversations, log)
	healthHandler := handler.NewHealthHandler(redisClient, dbPool, log)
	streamHandler := handler.NewThreadStreamHandler(conversations, log, cfg.CORSAllowedOrigins)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "fasterr")
	authHandler := handler.NewAuthHandler(accountRepo, tokenManager, log)
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per user

	// 10. Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("/api/products", productsHandler)
	mux.Handle("/api/products/", productsHandler)
	mux.Handle("/api/catalog", catalogHandler)
	mux.Handle("/api/catalog/", catalogHandler)
	mux.Handle("/api/favorites", favoritesHandler)
	mux.Handle("/api/sellers/", sellersHandler)
	mux.Handle("/api/threads/", threadsHandler)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /ws/threads/{id}", streamHandler)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit -> CORS+mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(handlerWithCORS),
			),
		),
		log,
	)

	// 11. Start HTTP server with otel instrumentation
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "fasterr-http"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", 100),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	scheduler.Stop()
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
