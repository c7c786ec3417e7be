package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// AccountSettingResponse is one ledger account setting.
type AccountSettingResponse struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	AccountID string `json:"account_id"`
}

// AccountSettingsFromUseCase converts the settings listing.
func AccountSettingsFromUseCase(settings []usecase.AccountSetting) []AccountSettingResponse {
	out := make([]AccountSettingResponse, len(settings))
	for i, s := range settings {
		out[i] = AccountSettingResponse{Key: string(s.Key), Label: s.Label, AccountID: s.AccountID}
	}
	return out
}

// InvoiceLineResponse is one invoice line.
type InvoiceLineResponse struct {
	ID                  string              `json:"id"`
	Item                string              `json:"item"`
	Quantity            decimal.Decimal     `json:"quantity"`
	StockNotTransferred decimal.NullDecimal `json:"stock_not_transferred"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID                  string                `json:"id"`
	Kind                string                `json:"kind"`
	StockNotTransferred decimal.Decimal       `json:"stock_not_transferred"`
	Lines               []InvoiceLineResponse `json:"lines"`
	Version             int64                 `json:"version"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// InvoiceFromDomain converts a domain invoice to response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:                  l.ID,
			Item:                l.Item,
			Quantity:            l.Quantity,
			StockNotTransferred: l.StockNotTransferred,
		}
	}
	return &InvoiceResponse{
		ID:                  inv.ID,
		Kind:                string(inv.Kind),
		StockNotTransferred: inv.StockNotTransferred,
		Lines:               lines,
		Version:             inv.Version,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}
}

// InvoiceCheckResponse is the result of checking an invoice's quantities.
type InvoiceCheckResponse struct {
	InvoiceID         string                    `json:"invoice_id"`
	RecordedTotal     decimal.Decimal           `json:"recorded_total"`
	CalculatedTotal   decimal.Decimal           `json:"calculated_total"`
	IsReconciled      bool                      `json:"is_reconciled"`
	LineDiscrepancies []LineDiscrepancyResponse `json:"line_discrepancies"`
	LastChecked       time.Time                 `json:"last_checked"`
}

// LineDiscrepancyResponse is an invoice line out of bounds.
type LineDiscrepancyResponse struct {
	LineID              string          `json:"line_id"`
	Item                string          `json:"item"`
	Quantity            decimal.Decimal `json:"quantity"`
	StockNotTransferred decimal.Decimal `json:"stock_not_transferred"`
}

// InvoiceCheckFromUseCase converts a check result.
func InvoiceCheckFromUseCase(r *usecase.InvoiceCheckResult) *InvoiceCheckResponse {
	lines := make([]LineDiscrepancyResponse, len(r.LineDiscrepancies))
	for i, d := range r.LineDiscrepancies {
		lines[i] = LineDiscrepancyResponse{
			LineID:              d.LineID,
			Item:                d.Item,
			Quantity:            d.Quantity,
			StockNotTransferred: d.StockNotTransferred,
		}
	}
	return &InvoiceCheckResponse{
		InvoiceID:         r.InvoiceID,
		RecordedTotal:     r.RecordedTotal,
		CalculatedTotal:   r.CalculatedTotal,
		IsReconciled:      r.IsReconciled,
		LineDiscrepancies: lines,
		LastChecked:       r.LastChecked,
	}
}

// StockTransferItemResponse is one transfer line.
type StockTransferItemResponse struct {
	Item     string              `json:"item"`
	Rate     decimal.Decimal     `json:"rate"`
	Quantity decimal.NullDecimal `json:"quantity"`
	Amount   decimal.Decimal     `json:"amount"`
	Location string              `json:"location"`
}

// StockTransferResponse represents a stock transfer in API responses.
type StockTransferResponse struct {
	ID            string                      `json:"id"`
	Direction     string                      `json:"direction"`
	Status        string                      `json:"status"`
	BackReference string                      `json:"back_reference,omitempty"`
	TotalAmount   decimal.Decimal             `json:"total_amount"`
	Items         []StockTransferItemResponse `json:"items"`
	Version       int64                       `json:"version"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	SubmittedAt   *time.Time                  `json:"submitted_at,omitempty"`
	CancelledAt   *time.Time                  `json:"cancelled_at,omitempty"`
}

// StockTransferFromDomain converts a domain transfer to response.
func StockTransferFromDomain(t *domain.StockTransfer) *StockTransferResponse {
	items := make([]StockTransferItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = StockTransferItemResponse{
			Item:     item.Item,
			Rate:     item.Rate,
			Quantity: item.Quantity,
			Amount:   item.Amount(),
			Location: item.Location,
		}
	}
	return &StockTransferResponse{
		ID:            t.ID,
		Direction:     string(t.Direction),
		Status:        string(t.Status),
		BackReference: t.BackReference,
		TotalAmount:   t.TotalAmount,
		Items:         items,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		SubmittedAt:   t.SubmittedAt,
		CancelledAt:   t.CancelledAt,
	}
}

// StockTransfersFromDomain converts domain transfers to responses.
func StockTransfersFromDomain(transfers []*domain.StockTransfer) []*StockTransferResponse {
	result := make([]*StockTransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = StockTransferFromDomain(t)
	}
	return result
}

// ListStockTransfersResponse represents a page of stock transfers.
type ListStockTransfersResponse struct {
	StockTransfers []*StockTransferResponse `json:"stock_transfers"`
	Total          int64                    `json:"total"`
}

// PostingEntryResponse is one ledger entry.
type PostingEntryResponse struct {
	AccountID string          `json:"account_id"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	RoundOff  bool            `json:"round_off,omitempty"`
}

// PostingResponse represents a ledger posting in API responses.
type PostingResponse struct {
	ID         string                 `json:"id,omitempty"`
	TransferID string                 `json:"transfer_id"`
	Entries    []PostingEntryResponse `json:"entries"`
	CreatedAt  *time.Time             `json:"created_at,omitempty"`
}

// PostingFromDomain converts a posting, round off entry last. A preview
// posting that was never stored has no ID or creation time.
func PostingFromDomain(p *domain.LedgerPosting) *PostingResponse {
	all := p.AllEntries()
	entries := make([]PostingEntryResponse, len(all))
	for i, e := range all {
		entries[i] = PostingEntryResponse{
			AccountID: e.AccountID,
			Side:      string(e.Side),
			Amount:    e.Amount,
			RoundOff:  e.RoundOff,
		}
	}
	resp := &PostingResponse{ID: p.ID, TransferID: p.TransferID, Entries: entries}
	if !p.CreatedAt.IsZero() {
		createdAt := p.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// MovementResponse describes the physical movement of one transfer line.
type MovementResponse struct {
	Item         string              `json:"item"`
	Rate         decimal.Decimal     `json:"rate"`
	Quantity     decimal.NullDecimal `json:"quantity"`
	FromLocation string              `json:"from_location,omitempty"`
	ToLocation   string              `json:"to_location,omitempty"`
}

// MovementsFromDomain converts movements to responses.
func MovementsFromDomain(movements []domain.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = MovementResponse{
			Item:         m.Item,
			Rate:         m.Rate,
			Quantity:     m.Quantity,
			FromLocation: m.FromLocation,
			ToLocation:   m.ToLocation,
		}
	}
	return out
}

// SubmitResponse is returned after a transfer is submitted.
type SubmitResponse struct {
	Transfer *StockTransferResponse `json:"transfer"`
	Posting  *PostingResponse       `json:"posting"`
	Invoice  *InvoiceResponse       `json:"invoice,omitempty"`
}

// SubmitFromUseCase converts a submit result.
func SubmitFromUseCase(r *usecase.SubmitResult) *SubmitResponse {
	resp := &SubmitResponse{
		Transfer: StockTransferFromDomain(r.Transfer),
		Posting:  PostingFromDomain(r.Posting),
	}
	if r.Invoice != nil {
		resp.Invoice = InvoiceFromDomain(r.Invoice)
	}
	return resp
}

// CancelResponse is returned after a transfer is cancelled.
type CancelResponse struct {
	Transfer *StockTransferResponse `json:"transfer"`
	Invoice  *InvoiceResponse       `json:"invoice,omitempty"`
}

// CancelFromUseCase converts a cancel result.
func CancelFromUseCase(r *usecase.CancelResult) *CancelResponse {
	resp := &CancelResponse{Transfer: StockTransferFromDomain(r.Transfer)}
	if r.Invoice != nil {
		resp.Invoice = InvoiceFromDomain(r.Invoice)
	}
	return resp
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	RequestID   string         `json:"request_id,omitempty"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		out[i] = AuditLogResponse{
			ID:          l.ID,
			Actor:       l.Actor,
			Action:      l.Action,
			RequestID:   l.RequestID,
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			Status:      l.Status,
			CreatedAt:   l.CreatedAt,
		}
	}
	return out
}

// ConsistencyResponse reports the ledger-wide debit and credit totals.
type ConsistencyResponse struct {
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Difference   decimal.Decimal `json:"difference"`
	Consistent   bool            `json:"consistent"`
}

// ConsistencyFromUseCase converts a consistency report.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		TotalDebits:  r.TotalDebits,
		TotalCredits: r.TotalCredits,
		Difference:   r.TotalDebits.Sub(r.TotalCredits),
		Consistent:   r.Consistent,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}
