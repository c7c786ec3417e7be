package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu     sync.RWMutex
	values map[domain.SettingKey]string

	GetFunc    func(ctx context.Context, key domain.SettingKey) (string, bool, error)
	GetAllFunc func(ctx context.Context) (map[domain.SettingKey]string, error)
	SetFunc    func(ctx context.Context, key domain.SettingKey, value string, updatedAt time.Time) error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		values: make(map[domain.SettingKey]string),
	}
}

func (m *MockSettingsRepository) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok && v != "", nil
}

func (m *MockSettingsRepository) GetAll(ctx context.Context) (map[domain.SettingKey]string, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.SettingKey]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *MockSettingsRepository) Set(ctx context.Context, key domain.SettingKey, value string, updatedAt time.Time) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	ExistsFunc            func(ctx context.Context, id string) (bool, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[id]
	return ok, nil
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			cp := *acc
			accounts = append(accounts, &cp)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var accounts []*domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) >= limit {
			break
		}
		accounts = append(accounts, m.accounts[id])
	}
	return accounts, nil
}

// MockStockTransferRepository is a mock implementation of StockTransferRepository.
type MockStockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.StockTransfer

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.StockTransfer, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.StockTransfer, error)
	UpdateFunc              func(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error
	DeleteFunc              func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByBackReferenceFunc func(ctx context.Context, invoiceID string, limit, offset int) ([]*domain.StockTransfer, error)
}

func NewMockStockTransferRepository() *MockStockTransferRepository {
	return &MockStockTransferRepository{
		transfers: make(map[string]*domain.StockTransfer),
	}
}

func cloneTransfer(t *domain.StockTransfer) *domain.StockTransfer {
	cp := *t
	cp.Items = make([]domain.StockTransferItem, len(t.Items))
	copy(cp.Items, t.Items)
	return &cp
}

func (m *MockStockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

func (m *MockStockTransferRepository) GetByID(ctx context.Context, id string) (*domain.StockTransfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return cloneTransfer(t), nil
	}
	return nil, domain.ErrStockTransferNotFound
}

func (m *MockStockTransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.StockTransfer, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockStockTransferRepository) Update(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transfers[transfer.ID]; !ok {
		return domain.ErrStockTransferNotFound
	}
	stored := cloneTransfer(transfer)
	stored.Version++
	m.transfers[transfer.ID] = stored
	return nil
}

func (m *MockStockTransferRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transfers[id]; !ok {
		return domain.ErrStockTransferNotFound
	}
	delete(m.transfers, id)
	return nil
}

func (m *MockStockTransferRepository) ListByBackReference(ctx context.Context, invoiceID string, limit, offset int) ([]*domain.StockTransfer, error) {
	if m.ListByBackReferenceFunc != nil {
		return m.ListByBackReferenceFunc(ctx, invoiceID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.StockTransfer
	for _, t := range m.transfers {
		if t.BackReference == invoiceID {
			out = append(out, cloneTransfer(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
// Line writes are applied to the stored invoice immediately.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	CreateFunc                        func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error
	GetByIDFunc                       func(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdateFunc              func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error)
	UpdateLineStockNotTransferredFunc func(ctx context.Context, tx usecase.Transaction, lineID string, value decimal.Decimal) error
	UpdateStockNotTransferredFunc     func(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, version int64, updatedAt time.Time) error
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	cp := *inv
	cp.Lines = make([]domain.InvoiceLine, len(inv.Lines))
	copy(cp.Lines, inv.Lines)
	return &cp
}

func (m *MockInvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, invoice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[id]; ok {
		return cloneInvoice(inv), nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockInvoiceRepository) UpdateLineStockNotTransferred(ctx context.Context, tx usecase.Transaction, lineID string, value decimal.Decimal) error {
	if m.UpdateLineStockNotTransferredFunc != nil {
		return m.UpdateLineStockNotTransferredFunc(ctx, tx, lineID, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		for i := range inv.Lines {
			if inv.Lines[i].ID == lineID {
				inv.Lines[i].StockNotTransferred = decimal.NewNullDecimal(value)
				return nil
			}
		}
	}
	return domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) UpdateStockNotTransferred(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, version int64, updatedAt time.Time) error {
	if m.UpdateStockNotTransferredFunc != nil {
		return m.UpdateStockNotTransferredFunc(ctx, tx, id, total, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if inv.Version != version {
		return domain.ErrInvoiceVersionStale
	}
	inv.StockNotTransferred = total
	inv.Version++
	inv.UpdatedAt = updatedAt
	return nil
}

// MockPostingRepository is a mock implementation of PostingRepository.
type MockPostingRepository struct {
	mu       sync.RWMutex
	postings map[string]*domain.LedgerPosting

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, posting *domain.LedgerPosting) error
	GetByTransferFunc func(ctx context.Context, transferID string) (*domain.LedgerPosting, error)
}

func NewMockPostingRepository() *MockPostingRepository {
	return &MockPostingRepository{
		postings: make(map[string]*domain.LedgerPosting),
	}
}

func (m *MockPostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.LedgerPosting) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, posting)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings[posting.TransferID] = posting
	return nil
}

func (m *MockPostingRepository) GetByTransfer(ctx context.Context, transferID string) (*domain.LedgerPosting, error) {
	if m.GetByTransferFunc != nil {
		return m.GetByTransferFunc(ctx, transferID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.postings[transferID], nil
}

// Count returns the number of stored postings.
func (m *MockPostingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.postings)
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// EventTypes returns the types of the recorded events in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.EventType)
	}
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog

	CreateTxFunc        func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	GetByResourceIDFunc func(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	if m.GetByResourceIDFunc != nil {
		return m.GetByResourceIDFunc(ctx, resourceType, resourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	Commits   int
	Rollbacks int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{
		CommitFunc: func(ctx context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.Commits++
			return nil
		},
		RollbackFunc: func(ctx context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.Rollbacks++
			return nil
		},
	}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockInvoiceLocker is a mock implementation of InvoiceLocker.
type MockInvoiceLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	Acquired []string

	LockFunc func(ctx context.Context, invoiceID string) (func(context.Context) error, error)
}

func NewMockInvoiceLocker() *MockInvoiceLocker {
	return &MockInvoiceLocker{held: make(map[string]bool)}
}

func (m *MockInvoiceLocker) Lock(ctx context.Context, invoiceID string) (func(context.Context) error, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, invoiceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[invoiceID] {
		return nil, domain.ErrInvoiceLocked
	}
	m.held[invoiceID] = true
	m.Acquired = append(m.Acquired, invoiceID)
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, invoiceID)
		return nil
	}, nil
}

// Held reports whether the invoice lock is currently held.
func (m *MockInvoiceLocker) Held(invoiceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[invoiceID]
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
