package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes sales invoices from purchase invoices.
type InvoiceKind string

const (
	InvoiceKindSales    InvoiceKind = "sales"
	InvoiceKindPurchase InvoiceKind = "purchase"
)

// IsValid reports whether k is a known invoice kind.
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindSales || k == InvoiceKindPurchase
}

// InvoiceLine is one line of an invoice. StockNotTransferred counts the
// quantity still owed in physical stock movement; an invalid value is
// treated as zero.
type InvoiceLine struct {
	ID                  string
	Item                string
	Quantity            decimal.Decimal
	StockNotTransferred decimal.NullDecimal
}

// NotTransferred returns the line's not-transferred quantity, zero if undefined.
func (l InvoiceLine) NotTransferred() decimal.Decimal {
	if !l.StockNotTransferred.Valid {
		return decimal.Zero
	}
	return l.StockNotTransferred.Decimal
}

// Invoice is the document a stock transfer refers back to.
type Invoice struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ID                  string
	Kind                InvoiceKind
	Lines               []InvoiceLine
	StockNotTransferred decimal.Decimal
	Version             int64
}

// Validate checks the invoice has lines with non-negative quantities.
func (inv *Invoice) Validate() error {
	if !inv.Kind.IsValid() {
		return ErrInvalidInvoiceKind
	}
	if len(inv.Lines) == 0 {
		return ErrInvoiceEmpty
	}
	if len(inv.Lines) > MaxLinesPerDocument {
		return fmt.Errorf("%w: more than %d lines", ErrTooManyLines, MaxLinesPerDocument)
	}
	for _, line := range inv.Lines {
		if err := ValidateQuantity(line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeStockNotTransferred sets the aggregate from the line values and returns it.
func (inv *Invoice) RecomputeStockNotTransferred() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.NotTransferred())
	}
	inv.StockNotTransferred = total
	return total
}
