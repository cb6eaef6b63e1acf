package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/config"
	"github.com/shortenhub/shorten/internal/events"
	"github.com/shortenhub/shorten/internal/infrastructure/db"
	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"github.com/shortenhub/shorten/internal/infrastructure/telemetry"
	"github.com/shortenhub/shorten/internal/processing/links"
	mongoStorage "github.com/shortenhub/shorten/internal/storage/mongo"
	redisStorage "github.com/shortenhub/shorten/internal/storage/redis"
	sqliteStorage "github.com/shortenhub/shorten/internal/storage/sqlite"
	"github.com/shortenhub/shorten/internal/suggest"
	httpTransport "github.com/shortenhub/shorten/internal/transport/http"
	"github.com/shortenhub/shorten/internal/transport/http/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("store_backend", string(cfg.Store.Backend)),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	var (
		historyRepo   links.HistoryRepository
		authSvc       *auth.Service
		brandingStore httpTransport.BrandingStore
	)

	switch cfg.Store.Backend {
	case config.StoreMongo:
		mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() { _ = mongoConn.Disconnect() }()

		repo, err := mongoStorage.NewHistoryRepository(mongoConn)
		if err != nil {
			logger.Fatal("Failed to initialize history repository", zap.Error(err))
		}
		historyRepo = repo

		usersRepo, err := mongoStorage.NewUsersRepository(mongoConn)
		if err != nil {
			logger.Fatal("Failed to initialize users repository", zap.Error(err))
		}
		tokens, err := auth.NewHS256Service(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
		if err != nil {
			logger.Fatal("Failed to initialize token service", zap.Error(err))
		}
		authSvc = auth.NewService(usersRepo, tokens)

	default:
		localDB, err := db.OpenSQLite(cfg.Store.LocalPath)
		if err != nil {
			logger.Fatal("Failed to open local store", zap.Error(err))
		}
		defer func() { _ = localDB.Close() }()

		repo, err := sqliteStorage.NewHistoryRepository(localDB)
		if err != nil {
			logger.Fatal("Failed to initialize history repository", zap.Error(err))
		}
		historyRepo = repo
		brandingStore = repo
	}

	var analyzer links.Analyzer
	if cfg.Suggest.Enabled {
		analyzer = suggest.NewClient(cfg.Suggest.BaseURL, cfg.Suggest.APIKey, cfg.Suggest.Model, cfg.Suggest.Timeout)
		logger.Info("Suggestion analyzer enabled", zap.String("model", cfg.Suggest.Model))
	}

	linkSvc := links.NewService(historyRepo, analyzer)

	var createLimiter *middleware.RedisFixedWindowLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err := redisStorage.New(redisStorage.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		limiterStore := redisStorage.NewFixedWindowLimiter(redisClient, "rl:write", time.Minute)
		createLimiter = middleware.NewRedisFixedWindowLimiter(limiterStore, cfg.Redis.WritesPerMinute)
	}

	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = publisher.Close() }()
		logger.Info("Kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	router := httpTransport.NewRouter(cfg, httpTransport.RouterDeps{
		Links:     linkSvc,
		Auth:      authSvc,
		Limiter:   createLimiter,
		Publisher: publisher,
		Branding:  brandingStore,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
