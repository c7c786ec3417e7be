package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{Name: r.Name}
}

// UpdateAccountSettingsRequest sets ledger account settings. Keys absent
// from the map are left unchanged; an empty value clears the setting.
type UpdateAccountSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,oneof=stockInHand costOfGoodsSold stockReceivedButNotBilled roundOffAccount,endkeys,max=64"`
}

// ToSettings converts to the settings map taken by the use case.
func (r *UpdateAccountSettingsRequest) ToSettings() map[domain.SettingKey]string {
	out := make(map[domain.SettingKey]string, len(r.Settings))
	for k, v := range r.Settings {
		out[domain.SettingKey(k)] = v
	}
	return out
}

// InvoiceLineRequest is one line of a new invoice.
type InvoiceLineRequest struct {
	Item     string          `json:"item" validate:"required,max=255"`
	Quantity decimal.Decimal `json:"quantity" validate:"nonnegative_decimal"`
}

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	Kind  string               `json:"kind" validate:"required,oneof=sales purchase"`
	Lines []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateInvoiceRequest) ToUseCaseInput() usecase.CreateInvoiceInput {
	lines := make([]usecase.InvoiceLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.InvoiceLineInput{Item: l.Item, Quantity: l.Quantity}
	}
	return usecase.CreateInvoiceInput{Kind: r.Kind, Lines: lines}
}

// StockTransferItemRequest is one line of a stock transfer. A null quantity
// leaves the line undefined.
type StockTransferItemRequest struct {
	Item     string              `json:"item" validate:"max=255"`
	Rate     decimal.Decimal     `json:"rate" validate:"nonnegative_decimal"`
	Quantity decimal.NullDecimal `json:"quantity" validate:"omitempty,nonnegative_decimal"`
	Location string              `json:"location" validate:"max=255"`
}

func (r StockTransferItemRequest) toDomain() domain.StockTransferItem {
	return domain.StockTransferItem{
		Item:     r.Item,
		Rate:     r.Rate,
		Quantity: r.Quantity,
		Location: r.Location,
	}
}

func itemsToDomain(items []StockTransferItemRequest) []domain.StockTransferItem {
	out := make([]domain.StockTransferItem, len(items))
	for i, item := range items {
		out[i] = item.toDomain()
	}
	return out
}

// CreateStockTransferRequest represents a request to create a draft transfer.
type CreateStockTransferRequest struct {
	Direction     string                     `json:"direction" validate:"required,oneof=outbound inbound"`
	BackReference string                     `json:"back_reference" validate:"max=64"`
	Items         []StockTransferItemRequest `json:"items" validate:"dive"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateStockTransferRequest) ToUseCaseInput() usecase.CreateStockTransferInput {
	return usecase.CreateStockTransferInput{
		Direction:     r.Direction,
		BackReference: r.BackReference,
		Items:         itemsToDomain(r.Items),
	}
}

// UpdateStockTransferItemsRequest replaces the lines of a draft.
type UpdateStockTransferItemsRequest struct {
	Items []StockTransferItemRequest `json:"items" validate:"dive"`
}

// ToDomain converts the items to domain lines.
func (r *UpdateStockTransferItemsRequest) ToDomain() []domain.StockTransferItem {
	return itemsToDomain(r.Items)
}
