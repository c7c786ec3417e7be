package domain

import "time"

// Event types
const (
	EventTypeStockTransferSubmitted  = "stock_transfer.submitted"
	EventTypeStockTransferCancelled  = "stock_transfer.cancelled"
	EventTypeStockTransferDuplicated = "stock_transfer.duplicated"
	EventTypeInvoiceReconciled       = "invoice.reconciled"
)

// Aggregate types
const (
	AggregateTypeStockTransfer = "stock_transfer"
	AggregateTypeInvoice       = "invoice"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// StockTransferSubmittedEvent payload
type StockTransferSubmittedEvent struct {
	TransferID    string `json:"transfer_id"`
	Direction     string `json:"direction"`
	BackReference string `json:"back_reference,omitempty"`
	TotalAmount   string `json:"total_amount"`
	PostingID     string `json:"posting_id"`
}

// StockTransferCancelledEvent payload
type StockTransferCancelledEvent struct {
	TransferID    string `json:"transfer_id"`
	Direction     string `json:"direction"`
	BackReference string `json:"back_reference,omitempty"`
}

// InvoiceReconciledEvent payload
type InvoiceReconciledEvent struct {
	InvoiceID           string `json:"invoice_id"`
	TransferID          string `json:"transfer_id"`
	Mode                string `json:"mode"`
	StockNotTransferred string `json:"stock_not_transferred"`
}

// Payload converts the event to an outbox payload.
func (e StockTransferSubmittedEvent) Payload() map[string]any {
	return MarshalState(e)
}

// Payload converts the event to an outbox payload.
func (e StockTransferCancelledEvent) Payload() map[string]any {
	return MarshalState(e)
}

// Payload converts the event to an outbox payload.
func (e InvoiceReconciledEvent) Payload() map[string]any {
	return MarshalState(e)
}
