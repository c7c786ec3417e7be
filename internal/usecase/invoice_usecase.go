package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
)

// InvoiceUseCase handles the invoices stock transfers reference.
type InvoiceUseCase struct {
	txManager   TransactionManager
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(txManager TransactionManager, invoiceRepo InvoiceRepository, idGen IDGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{
		txManager:   txManager,
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
	}
}

// InvoiceLineInput is one line of a new invoice.
type InvoiceLineInput struct {
	Item     string
	Quantity decimal.Decimal
}

// CreateInvoiceInput represents input for creating an invoice.
type CreateInvoiceInput struct {
	Kind  string
	Lines []InvoiceLineInput
}

// CreateInvoice stores an invoice whose lines still owe their full quantity.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	now := time.Now().UTC()

	invoice := &domain.Invoice{
		ID:        uc.idGen.Generate(),
		Kind:      domain.InvoiceKind(input.Kind),
		Lines:     make([]domain.InvoiceLine, 0, len(input.Lines)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, l := range input.Lines {
		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			ID:                  uc.idGen.Generate(),
			Item:                l.Item,
			Quantity:            l.Quantity,
			StockNotTransferred: decimal.NewNullDecimal(l.Quantity),
		})
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	invoice.RecomputeStockNotTransferred()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.invoiceRepo.Create(ctx, tx, invoice); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice by ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}
