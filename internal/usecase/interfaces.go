package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
)

// SettingsProvider reads the ledger account configuration.
// ok is false when the setting has never been set or is empty.
type SettingsProvider interface {
	Get(ctx context.Context, key domain.SettingKey) (value string, ok bool, err error)
}

// SettingsRepository defines data access for account settings.
type SettingsRepository interface {
	SettingsProvider
	GetAll(ctx context.Context) (map[domain.SettingKey]string, error)
	Set(ctx context.Context, key domain.SettingKey, value string, updatedAt time.Time) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// StockTransferRepository defines data access for stock transfers.
type StockTransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.StockTransfer) error
	GetByID(ctx context.Context, id string) (*domain.StockTransfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.StockTransfer, error)
	// Update rewrites the header and lines and bumps the version.
	Update(ctx context.Context, tx Transaction, transfer *domain.StockTransfer) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByBackReference(ctx context.Context, invoiceID string, limit, offset int) ([]*domain.StockTransfer, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	// GetByIDForUpdate locks the invoice row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	UpdateLineStockNotTransferred(ctx context.Context, tx Transaction, lineID string, value decimal.Decimal) error
	// UpdateStockNotTransferred writes the aggregate when the stored version
	// still equals version. It returns domain.ErrInvoiceVersionStale otherwise.
	UpdateStockNotTransferred(ctx context.Context, tx Transaction, id string, total decimal.Decimal, version int64, updatedAt time.Time) error
}

// PostingRepository defines data access for ledger postings.
type PostingRepository interface {
	Create(ctx context.Context, tx Transaction, posting *domain.LedgerPosting) error
	GetByTransfer(ctx context.Context, transferID string) (*domain.LedgerPosting, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// InvoiceLocker serializes reconciliation of a single invoice across
// processes. The returned release function must be called once the
// reconciling transaction has finished.
type InvoiceLocker interface {
	Lock(ctx context.Context, invoiceID string) (release func(context.Context) error, err error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
