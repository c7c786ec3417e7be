package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationUseCase audits invoices against their quantity invariants.
type ReconciliationUseCase struct {
	invoiceRepo InvoiceRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(invoiceRepo InvoiceRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		invoiceRepo: invoiceRepo,
	}
}

// LineDiscrepancy is an invoice line whose not-transferred quantity is out
// of bounds.
type LineDiscrepancy struct {
	LineID              string
	Item                string
	Quantity            decimal.Decimal
	StockNotTransferred decimal.Decimal
}

// InvoiceCheckResult represents the result of an invoice check
type InvoiceCheckResult struct {
	InvoiceID         string
	RecordedTotal     decimal.Decimal
	CalculatedTotal   decimal.Decimal
	LineDiscrepancies []LineDiscrepancy
	IsReconciled      bool
	LastChecked       time.Time
}

// CheckInvoice verifies every line holds 0 <= not transferred <= quantity and
// that the stored aggregate equals the sum of the lines.
func (uc *ReconciliationUseCase) CheckInvoice(ctx context.Context, invoiceID string) (*InvoiceCheckResult, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	result := &InvoiceCheckResult{
		InvoiceID:         invoice.ID,
		RecordedTotal:     invoice.StockNotTransferred,
		CalculatedTotal:   decimal.Zero,
		LineDiscrepancies: make([]LineDiscrepancy, 0),
		LastChecked:       time.Now().UTC(),
	}

	for _, line := range invoice.Lines {
		n := line.NotTransferred()
		result.CalculatedTotal = result.CalculatedTotal.Add(n)
		if n.IsNegative() || n.GreaterThan(line.Quantity) {
			result.LineDiscrepancies = append(result.LineDiscrepancies, LineDiscrepancy{
				LineID:              line.ID,
				Item:                line.Item,
				Quantity:            line.Quantity,
				StockNotTransferred: n,
			})
		}
	}

	result.IsReconciled = len(result.LineDiscrepancies) == 0 &&
		result.RecordedTotal.Equal(result.CalculatedTotal)

	return result, nil
}
