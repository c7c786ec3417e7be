package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle status of a stock transfer.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "draft"
	TransferStatusSubmitted TransferStatus = "submitted"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// StockTransferItem is one line of a stock transfer.
// An empty Item or an invalid Quantity means the value was never filled in.
type StockTransferItem struct {
	Item     string
	Rate     decimal.Decimal
	Quantity decimal.NullDecimal
	Location string
}

// Amount returns rate × quantity, or zero when the quantity is undefined.
func (i StockTransferItem) Amount() decimal.Decimal {
	if !i.Quantity.Valid {
		return decimal.Zero
	}
	return i.Rate.Mul(i.Quantity.Decimal)
}

// Validate checks the line holds non-negative values.
func (i StockTransferItem) Validate() error {
	if i.Rate.IsNegative() {
		return ErrInvalidRate
	}
	if i.Quantity.Valid {
		return ValidateQuantity(i.Quantity.Decimal)
	}
	return nil
}

// StockTransfer is a shipment (outbound) or purchase receipt (inbound).
type StockTransfer struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SubmittedAt   *time.Time
	CancelledAt   *time.Time
	ID            string
	Direction     Direction
	Status        TransferStatus
	BackReference string
	TotalAmount   decimal.Decimal
	Items         []StockTransferItem
	Version       int64
}

// Validate validates the transfer's direction and lines.
func (t *StockTransfer) Validate() error {
	if !t.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if len(t.Items) > MaxLinesPerDocument {
		return fmt.Errorf("%w: more than %d lines", ErrTooManyLines, MaxLinesPerDocument)
	}
	for _, item := range t.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasBackReference reports whether the transfer is linked to an invoice.
func (t *StockTransfer) HasBackReference() bool {
	return t.BackReference != ""
}

// ComputeTotal sums the line amounts. ok is false when the transfer has no
// lines or a line quantity is undefined.
func (t *StockTransfer) ComputeTotal() (total decimal.Decimal, ok bool) {
	if len(t.Items) == 0 {
		return decimal.Zero, false
	}

	total = decimal.Zero
	for _, item := range t.Items {
		if !item.Quantity.Valid {
			return decimal.Zero, false
		}
		total = total.Add(item.Amount())
	}
	return total, true
}

// RecomputeTotal refreshes TotalAmount from the current lines.
func (t *StockTransfer) RecomputeTotal() {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Amount())
	}
	t.TotalAmount = total
}

// SetItems replaces the lines of a draft and recomputes the total.
func (t *StockTransfer) SetItems(items []StockTransferItem) error {
	if t.Status != TransferStatusDraft {
		return ErrTransferNotEditable
	}
	if len(items) > MaxLinesPerDocument {
		return fmt.Errorf("%w: more than %d lines", ErrTooManyLines, MaxLinesPerDocument)
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	t.Items = items
	t.RecomputeTotal()
	return nil
}

// Submit moves a draft to submitted.
func (t *StockTransfer) Submit(at time.Time) error {
	if t.Status != TransferStatusDraft {
		return &TransitionError{From: t.Status, Action: "submit"}
	}
	t.Status = TransferStatusSubmitted
	t.SubmittedAt = &at
	t.UpdatedAt = at
	return nil
}

// Cancel moves a submitted transfer to cancelled.
func (t *StockTransfer) Cancel(at time.Time) error {
	if t.Status != TransferStatusSubmitted {
		return &TransitionError{From: t.Status, Action: "cancel"}
	}
	t.Status = TransferStatusCancelled
	t.CancelledAt = &at
	t.UpdatedAt = at
	return nil
}

// CanDiscard reports whether the transfer may be deleted.
func (t *StockTransfer) CanDiscard() error {
	if t.Status != TransferStatusDraft {
		return &TransitionError{From: t.Status, Action: "discard"}
	}
	return nil
}

// Duplicate copies the transfer into a new draft that is not linked to the
// original invoice.
func (t *StockTransfer) Duplicate(id string, at time.Time) *StockTransfer {
	items := make([]StockTransferItem, len(t.Items))
	copy(items, t.Items)

	dup := &StockTransfer{
		ID:        id,
		Direction: t.Direction,
		Status:    TransferStatusDraft,
		Items:     items,
		CreatedAt: at,
		UpdatedAt: at,
	}
	dup.RecomputeTotal()
	return dup
}
