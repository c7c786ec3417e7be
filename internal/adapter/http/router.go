package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/stockledger/internal/adapter/http/handler"
	"github.com/iho/stockledger/internal/adapter/http/middleware"
	"github.com/iho/stockledger/internal/infrastructure/metrics"
	"github.com/iho/stockledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler       *handler.AccountHandler
	SettingsHandler      *handler.SettingsHandler
	InvoiceHandler       *handler.InvoiceHandler
	StockTransferHandler *handler.StockTransferHandler
	LedgerHandler        *handler.LedgerHandler
	HealthHandler        *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestContext)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
		})

		r.Route("/settings/accounts", func(r chi.Router) {
			r.Get("/", cfg.SettingsHandler.Get)
			r.Put("/", cfg.SettingsHandler.Update)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", cfg.InvoiceHandler.Create)
			r.Get("/{id}", cfg.InvoiceHandler.Get)
			r.Get("/{id}/check", cfg.InvoiceHandler.Check)
			r.Get("/{id}/stock-transfers", cfg.StockTransferHandler.ListByInvoice)
		})

		r.Route("/stock-transfers", func(r chi.Router) {
			r.Post("/", cfg.StockTransferHandler.Create)
			r.Get("/{id}", cfg.StockTransferHandler.Get)
			r.Delete("/{id}", cfg.StockTransferHandler.Discard)
			r.Put("/{id}/items", cfg.StockTransferHandler.UpdateItems)
			r.Get("/{id}/posting", cfg.StockTransferHandler.Posting)
			r.Get("/{id}/movements", cfg.StockTransferHandler.Movements)
			r.Get("/{id}/audit", cfg.StockTransferHandler.AuditTrail)
			r.Post("/{id}/submit", cfg.StockTransferHandler.Submit)
			r.Post("/{id}/cancel", cfg.StockTransferHandler.Cancel)
			r.Post("/{id}/duplicate", cfg.StockTransferHandler.Duplicate)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
