package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/stockledger/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     any
		wantErr string
	}{
		{
			name: "valid transfer",
			req: &CreateStockTransferRequest{
				Direction: "outbound",
				Items: []StockTransferItemRequest{
					{Item: "A", Rate: decimal.NewFromInt(2), Quantity: decimal.NewNullDecimal(decimal.NewFromInt(3))},
					{Item: "B"},
				},
			},
		},
		{
			name:    "unknown direction",
			req:     &CreateStockTransferRequest{Direction: "sideways"},
			wantErr: "Direction: oneof",
		},
		{
			name: "negative rate",
			req: &CreateStockTransferRequest{
				Direction: "inbound",
				Items:     []StockTransferItemRequest{{Item: "A", Rate: decimal.NewFromInt(-1)}},
			},
			wantErr: "Items[0].Rate: nonnegative_decimal",
		},
		{
			name: "negative quantity",
			req: &UpdateStockTransferItemsRequest{
				Items: []StockTransferItemRequest{{Item: "A", Quantity: decimal.NewNullDecimal(decimal.NewFromInt(-4))}},
			},
			wantErr: "Items[0].Quantity: nonnegative_decimal",
		},
		{
			name:    "invoice without lines",
			req:     &CreateInvoiceRequest{Kind: "sales"},
			wantErr: "Lines: required",
		},
		{
			name:    "unknown setting",
			req:     &UpdateAccountSettingsRequest{Settings: map[string]string{"stockOnMoon": "acc-1"}},
			wantErr: "oneof",
		},
		{
			name:    "empty account name",
			req:     &CreateAccountRequest{},
			wantErr: "Name: required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidationFailed))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateStockTransferRequest_Decode(t *testing.T) {
	body := `{"direction":"outbound","back_reference":"inv-1","items":[
		{"item":"A","rate":"2.5","quantity":"4","location":"Stores"},
		{"item":"B","rate":"1","quantity":null,"location":"Stores"}]}`

	var req CreateStockTransferRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, Validate(&req))

	input := req.ToUseCaseInput()
	assert.Equal(t, "outbound", input.Direction)
	assert.Equal(t, "inv-1", input.BackReference)
	require.Len(t, input.Items, 2)
	assert.True(t, input.Items[0].Amount().Equal(decimal.NewFromInt(10)))
	assert.False(t, input.Items[1].Quantity.Valid, "null quantity stays undefined")
}

func TestUpdateAccountSettingsRequest_ToSettings(t *testing.T) {
	req := &UpdateAccountSettingsRequest{Settings: map[string]string{
		"stockInHand":     "acc-stock",
		"roundOffAccount": "",
	}}

	got := req.ToSettings()
	assert.Equal(t, map[domain.SettingKey]string{
		domain.SettingStockInHand:     "acc-stock",
		domain.SettingRoundOffAccount: "",
	}, got)
}
