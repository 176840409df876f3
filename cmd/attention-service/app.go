package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq"

	"beacon/internal/attention"
	"beacon/internal/broker"
	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/records"
	"beacon/internal/rules"
	"beacon/pkg/bootstrap"
	"beacon/pkg/cel"
	"beacon/pkg/health"
	"beacon/pkg/logging"
	"beacon/pkg/metrics"
	"beacon/pkg/middleware"
	"beacon/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	rulesService   *rules.Service
	service        *attention.Service
	digester       *attention.Digester
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("attention-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	a.InitBroker("attention-service")

	tp, err := tracing.Init(a.Config.Tracing, "attention-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterAttentionMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("postgres configuration is required")
	}
	a.db = db

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		initCtx := logging.WithServiceName(ctx, "attention-service")
		a.Logger.WarnwCtx(initCtx, "Redis unavailable, snapshot cache disabled",
			"error", err,
		)
	} else {
		a.redisClient = redisClient
	}

	return nil
}

func (a *App) initService(ctx context.Context) error {
	a.rulesService = rules.NewService(rules.NewRepository(a.db), a.Config.Rules.Reload, a.Logger)

	var recordsRepo records.Repository = records.NewRepository(a.db)
	if a.Config.CircuitBreaker.Enabled {
		recordsRepo = records.NewCircuitBreakerRepository(recordsRepo, a.Config.CircuitBreaker)
	}

	guardEvaluator, err := cel.NewGuardEvaluator()
	if err != nil {
		return fmt.Errorf("failed to create guard evaluator: %w", err)
	}

	var snapshot *attention.SnapshotCache
	if a.redisClient != nil {
		ttl := time.Duration(a.Config.Attention.SnapshotTTLSeconds) * time.Second
		snapshot = attention.NewSnapshotCache(a.redisClient, ttl, a.Logger)
	}

	a.service = attention.NewService(
		a.rulesService,
		recordsRepo,
		engine.GuardFunc(guardEvaluator.Evaluate),
		snapshot,
		a.Logger,
	)
	return nil
}

func (a *App) initHTTPServer() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("attention-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	handler := attention.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: router,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.rulesService.StartReloader(gCtx)
	})

	if a.Config.Broker.Kafka.ConfigUpdateTopic != "" {
		configConsumer := broker.NewConsumer(a.Config.Broker, a.Logger)
		configConsumer.SetServiceName("attention-service")
		defer configConsumer.Close()
		configEventHandler := rules.NewHandler(a.rulesService, a.Logger)

		g.Go(func() error {
			configCtx := logging.WithServiceName(gCtx, "attention-service")
			a.Logger.InfowCtx(configCtx, "Starting config update event consumer",
				"topic", a.Config.Broker.Kafka.ConfigUpdateTopic,
			)
			return configConsumer.Consume(gCtx, a.Config.Broker.Kafka.ConfigUpdateTopic, configEventHandler.HandleConfigUpdateEvent)
		})
	}

	if a.Config.Attention.Digest.Enabled {
		a.digester = attention.NewDigester(a.service, a.Producer, a.Config.Attention.Digest, a.Logger)
		g.Go(func() error {
			return a.digester.Start(gCtx)
		})
	}

	err := g.Wait()

	if shutdownErr := a.Shutdown(context.Background()); shutdownErr != nil {
		a.Logger.Errorw("Shutdown finished with errors", "error", shutdownErr)
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, "attention-service")
	a.Logger.InfowCtx(shutdownCtx, "Shutting down attention service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			serverCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(serverCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
