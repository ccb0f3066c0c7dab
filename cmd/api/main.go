// Package main is the entrypoint for the Orientis API server.
//
// It wires configuration, storage, the search and orientation services and
// the HTTP layer together, then serves until interrupted.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/orientis/orientis/internal/api"
	"github.com/orientis/orientis/internal/auth"
	"github.com/orientis/orientis/internal/cache"
	"github.com/orientis/orientis/internal/config"
	"github.com/orientis/orientis/internal/db"
	"github.com/orientis/orientis/internal/health"
	"github.com/orientis/orientis/internal/middleware"
	"github.com/orientis/orientis/internal/orientation"
	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/ranker"
	"github.com/orientis/orientis/internal/search"
	"github.com/orientis/orientis/internal/tracing"
	"github.com/orientis/orientis/internal/university"
	"github.com/orientis/orientis/internal/upload"
	"github.com/orientis/orientis/internal/user"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to optional YAML config file")
		help       = flag.Bool("help", false, "show usage and exit")
	)
	flag.Parse()

	if *help {
		fmt.Println("Orientis API server")
		fmt.Println()
		fmt.Println("Configuration is read from environment variables, optionally merged")
		fmt.Println("with a YAML file passed via -config. Required: JWT_SECRET.")
		flag.PrintDefaults()
		return
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("starting server", slog.Any("config", cfg.LogSummary()))

	ctx := context.Background()

	// Tracing
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "orientis-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Storage. Without DATABASE_URL the server runs entirely in memory,
	// which is enough for local development against seeded data.
	var (
		database        *sql.DB
		users           user.Repository
		savedItems      user.SavedItemsRepository
		universities    university.Repository
		programs        program.Repository
		questionsRepo   orientation.QuestionRepository
		resultsRepo     orientation.ResultRepository
		dbHealthChecker health.Checker
	)
	if cfg.DatabaseURL != "" {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		pgUsers := user.NewPostgresRepository(database)
		users = pgUsers
		savedItems = pgUsers
		universities = university.NewPostgresRepository(database)
		programs = program.NewPostgresRepository(database)
		questionsRepo = orientation.NewPostgresQuestionRepository(database)
		resultsRepo = orientation.NewPostgresResultRepository(database)
		dbHealthChecker = health.NewDBChecker(database)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		memUsers := user.NewInMemoryRepository()
		users = memUsers
		savedItems = memUsers
		universities = university.NewInMemoryRepository()
		programs = program.NewInMemoryRepository()
		questionsRepo = orientation.NewInMemoryQuestionRepository()
		resultsRepo = orientation.NewInMemoryResultRepository()
	}

	// Redis-backed search cache, optional.
	var (
		searchCache       search.Cache
		redisHealthCheck  health.Checker
		redisClientToStop *redis.Client
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		searchCache = cache.NewRedisCacheFromClient(redisClient)
		redisHealthCheck = health.NewRedisChecker(redisClient)
		redisClientToStop = redisClient
	} else {
		logger.Warn("REDIS_URL not set, search cache disabled")
	}

	// Metrics
	metrics := middleware.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}
	rankerFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_ranker_fallbacks_total",
		Help: "Number of search requests answered with the default ranking",
	})
	if err := prometheus.Register(rankerFallbacks); err != nil {
		logger.Error("failed to register ranker metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Services
	jwtService := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	rankerClient := ranker.NewGeminiClient(
		cfg.RankerEndpoint,
		cfg.RankerModel,
		cfg.RankerAPIKey,
		time.Duration(cfg.RankerTimeoutSeconds)*time.Second,
		logger,
		ranker.WithFallbackCounter(rankerFallbacks),
	)
	if cfg.RankerAPIKey == "" {
		logger.Warn("RANKER_API_KEY not set, search ranking runs in fallback mode")
	}

	searchService := search.NewService(
		universities,
		programs,
		rankerClient,
		searchCache,
		time.Duration(cfg.SearchCacheTTLSeconds)*time.Second,
		logger,
	)
	orientationService := orientation.NewService(questionsRepo, resultsRepo, logger)

	var uploadService *upload.Service
	if cfg.StorageBucketName != "" {
		uploadService, err = upload.NewService(upload.ServiceConfig{
			BucketName:      cfg.StorageBucketName,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			Endpoint:        cfg.StorageEndpoint,
			MaxSizeMB:       cfg.StorageMaxUploadSizeMB,
		})
		if err != nil {
			logger.Error("failed to initialize upload service", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("object storage not configured, transcript uploads disabled")
	}

	// HTTP layer
	mux := api.NewRouter(api.RouterConfig{
		Auth:        api.NewAuthHandlers(users, jwtService, logger),
		University:  api.NewUniversityHandlers(universities, logger),
		Program:     api.NewProgramHandlers(programs, logger),
		Search:      api.NewSearchHandlers(searchService, logger),
		Orientation: api.NewOrientationHandlers(orientationService, logger),
		Upload:      api.NewUploadHandlers(uploadService, logger),
		Profile:     api.NewProfileHandlers(users, savedItems, programs, universities, logger),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    dbHealthChecker,
			RedisChecker: redisHealthCheck,
		}),
		JWTService:     jwtService,
		MetricsHandler: api.DefaultMetricsHandler(),
	})

	var handler http.Handler = middleware.RequestID(
		middleware.Logging(logger)(
			middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins))(
				middleware.HTTPMetrics(metrics)(mux),
			),
		),
	)
	if tracerProvider.IsEnabled() {
		handler = otelhttp.NewHandler(handler, "orientis-api")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
	}
	if redisClientToStop != nil {
		if err := redisClientToStop.Close(); err != nil {
			logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracer", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
