package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/stockledger/internal/adapter/http"
	"github.com/iho/stockledger/internal/adapter/http/handler"
	"github.com/iho/stockledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/stockledger/internal/adapter/repository/redis"
	"github.com/iho/stockledger/internal/infrastructure/metrics"
	"github.com/iho/stockledger/internal/usecase"
)

type stack struct {
	transferUC *usecase.StockTransferUseCase
	invoiceUC  *usecase.InvoiceUseCase
	ledgerUC   *usecase.LedgerUseCase
	router     http.Handler
}

func newStack(t *testing.T, pool *pgxpool.Pool, redisClient *goredis.Client) *stack {
	t.Helper()

	logger := zerolog.Nop()
	m := metrics.New(prometheus.NewRegistry())

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()

	settings := redisrepo.NewCachedSettingsProvider(
		postgres.NewSettingsRepository(pool), redisrepo.NewCache(redisClient), time.Minute, logger)

	transferUC := usecase.NewStockTransferUseCase(usecase.StockTransferDeps{
		TxManager:    txManager,
		TransferRepo: postgres.NewStockTransferRepository(pool),
		InvoiceRepo:  invoiceRepo,
		AccountRepo:  accountRepo,
		PostingRepo:  postgres.NewPostingRepository(pool),
		OutboxRepo:   postgres.NewOutboxRepository(pool),
		AuditRepo:    postgres.NewAuditRepository(pool),
		Validator:    usecase.NewAccountValidator(settings, accountRepo),
		Builder:      usecase.NewPostingBuilder(settings, 2),
		Reconciler:   usecase.NewBackReferenceReconciler(invoiceRepo, logger, m),
		Locker:       redisrepo.NewInvoiceLocker(redisClient, 10*time.Second, redisrepo.WithLockRetry(50, 20*time.Millisecond)),
		Retrier:      postgres.NewRetrier(logger),
		IDGen:        idGen,
		Logger:       logger,
		Metrics:      m,
	})
	invoiceUC := usecase.NewInvoiceUseCase(txManager, invoiceRepo, idGen)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:       handler.NewAccountHandler(usecase.NewAccountUseCase(accountRepo, idGen, m)),
		SettingsHandler:      handler.NewSettingsHandler(usecase.NewSettingsUseCase(settings, accountRepo)),
		InvoiceHandler:       handler.NewInvoiceHandler(invoiceUC, usecase.NewReconciliationUseCase(invoiceRepo)),
		StockTransferHandler: handler.NewStockTransferHandler(transferUC),
		LedgerHandler:        handler.NewLedgerHandler(ledgerUC),
		HealthHandler:        handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:     redisrepo.NewIdempotencyStore(redisClient),
		Metrics:              m,
		Logger:               logger,
	})

	return &stack{
		transferUC: transferUC,
		invoiceUC:  invoiceUC,
		ledgerUC:   ledgerUC,
		router:     router,
	}
}
