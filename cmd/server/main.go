package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/stockledger/internal/adapter/http"
	"github.com/iho/stockledger/internal/adapter/http/handler"
	"github.com/iho/stockledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/stockledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/stockledger/internal/adapter/repository/redis"
	"github.com/iho/stockledger/internal/infrastructure/config"
	"github.com/iho/stockledger/internal/infrastructure/eventpublisher"
	"github.com/iho/stockledger/internal/infrastructure/logger"
	"github.com/iho/stockledger/internal/infrastructure/metrics"
	"github.com/iho/stockledger/internal/infrastructure/postgres"
	"github.com/iho/stockledger/internal/infrastructure/redis"
	"github.com/iho/stockledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "stockledger",
	})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(connectCtx, redis.ClientConfig{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool, postgresRepo.WithLockTimeout(cfg.DatabaseLockTimeout))
	accountRepo := postgresRepo.NewAccountRepository(pool)
	settingsRepo := postgresRepo.NewSettingsRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	transferRepo := postgresRepo.NewStockTransferRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	settings := redisRepo.NewCachedSettingsProvider(settingsRepo, redisRepo.NewCache(redisClient), cfg.SettingsCacheTTL, appLogger)
	locker := redisRepo.NewInvoiceLocker(redisClient, cfg.InvoiceLockTTL)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, m)
	settingsUC := usecase.NewSettingsUseCase(settings, accountRepo)
	invoiceUC := usecase.NewInvoiceUseCase(txManager, invoiceRepo, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(invoiceRepo)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)
	transferUC := usecase.NewStockTransferUseCase(usecase.StockTransferDeps{
		TxManager:    txManager,
		TransferRepo: transferRepo,
		InvoiceRepo:  invoiceRepo,
		AccountRepo:  accountRepo,
		PostingRepo:  postingRepo,
		OutboxRepo:   outboxRepo,
		AuditRepo:    auditRepo,
		Validator:    usecase.NewAccountValidator(settings, accountRepo),
		Builder:      usecase.NewPostingBuilder(settings, cfg.LedgerPrecision),
		Reconciler:   usecase.NewBackReferenceReconciler(invoiceRepo, appLogger, m),
		Locker:       locker,
		Retrier:      postgresRepo.NewRetrier(appLogger),
		IDGen:        idGen,
		Logger:       appLogger,
		Metrics:      m,
	})

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:       handler.NewAccountHandler(accountUC),
		SettingsHandler:      handler.NewSettingsHandler(settingsUC),
		InvoiceHandler:       handler.NewInvoiceHandler(invoiceUC, reconciliationUC),
		StockTransferHandler: handler.NewStockTransferHandler(transferUC),
		LedgerHandler:        handler.NewLedgerHandler(ledgerUC),
		HealthHandler:        handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:     idempotencyStore,
		IdempotencyTTL:       cfg.IdempotencyTTL,
		RateLimiter:          rateLimiter,
		Metrics:              m,
		Gatherer:             registry,
		Logger:               appLogger,
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newPublisher(cfg.OutboxPublisher, redisClient, appLogger),
		Logger:     appLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go func() {
		if err := publisher.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if rateLimiter != nil {
		go cleanupRateLimiter(workerCtx, rateLimiter, time.Minute, 10*time.Minute, appLogger)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")
	stopWorkers()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

// newPublisher picks the outbox sink. Anything other than "log" goes to Redis pub/sub.
func newPublisher(kind string, client goredis.Cmdable, appLogger zerolog.Logger) eventpublisher.Publisher {
	if kind == "log" {
		return eventpublisher.NewLogPublisher(appLogger)
	}
	return eventpublisher.NewRedisPublisher(client, "")
}

func cleanupRateLimiter(ctx context.Context, rl *middleware.RateLimiter, every, idle time.Duration, appLogger zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Cleanup(idle); n > 0 {
				appLogger.Debug().Int("clients", n).Msg("evicted idle rate limiters")
			}
		}
	}
}
