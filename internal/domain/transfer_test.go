package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func item(name string, rate string, quantity int64) StockTransferItem {
	return StockTransferItem{
		Item:     name,
		Rate:     decimal.RequireFromString(rate),
		Quantity: qty(quantity),
		Location: "Stores",
	}
}

func TestStockTransfer_Validate(t *testing.T) {
	tests := []struct {
		name        string
		transfer    StockTransfer
		expectError error
	}{
		{
			name:     "valid outbound",
			transfer: StockTransfer{Direction: DirectionOutbound, Items: []StockTransferItem{item("A", "10", 2)}},
		},
		{
			name:        "unknown direction",
			transfer:    StockTransfer{Direction: "sideways"},
			expectError: ErrInvalidDirection,
		},
		{
			name:        "negative rate",
			transfer:    StockTransfer{Direction: DirectionInbound, Items: []StockTransferItem{item("A", "-1", 2)}},
			expectError: ErrInvalidRate,
		},
		{
			name:        "negative quantity",
			transfer:    StockTransfer{Direction: DirectionInbound, Items: []StockTransferItem{item("A", "1", -2)}},
			expectError: ErrInvalidQuantity,
		},
		{
			name: "undefined quantity allowed on a draft",
			transfer: StockTransfer{Direction: DirectionInbound, Items: []StockTransferItem{
				{Item: "A", Rate: decimal.NewFromInt(1)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transfer.Validate()
			if tt.expectError == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestStockTransfer_ComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []StockTransferItem
		expected string
		ok       bool
	}{
		{"no lines", nil, "0", false},
		{"single line", []StockTransferItem{item("A", "2.5", 4)}, "10", true},
		{"several lines", []StockTransferItem{item("A", "2.5", 4), item("B", "0.333", 3)}, "10.999", true},
		{"zero quantity", []StockTransferItem{item("A", "2.5", 0)}, "0", true},
		{"undefined quantity", []StockTransferItem{item("A", "1", 1), {Item: "B", Rate: decimal.NewFromInt(1)}}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := StockTransfer{Items: tt.items}
			total, ok := tr.ComputeTotal()
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !total.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected total %s, got %s", tt.expected, total)
			}
		})
	}
}

func TestStockTransfer_SetItems(t *testing.T) {
	tr := &StockTransfer{Direction: DirectionOutbound, Status: TransferStatusDraft}

	if err := tr.SetItems([]StockTransferItem{item("A", "3", 2), item("B", "1.5", 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.TotalAmount.Equal(decimal.NewFromInt(9)) {
		t.Errorf("expected total 9, got %s", tr.TotalAmount)
	}

	if err := tr.SetItems([]StockTransferItem{item("A", "-3", 2)}); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if len(tr.Items) != 2 {
		t.Errorf("rejected lines must not replace existing ones")
	}

	tr.Status = TransferStatusSubmitted
	if err := tr.SetItems(nil); !errors.Is(err, ErrTransferNotEditable) {
		t.Errorf("expected ErrTransferNotEditable, got %v", err)
	}
}

func TestStockTransfer_Lifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := &StockTransfer{Status: TransferStatusDraft}

	if err := tr.Cancel(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel from draft: expected ErrInvalidTransition, got %v", err)
	}

	if err := tr.Submit(now); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tr.Status != TransferStatusSubmitted || tr.SubmittedAt == nil {
		t.Fatalf("expected submitted with timestamp, got %s", tr.Status)
	}

	if err := tr.Submit(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double submit: expected ErrInvalidTransition, got %v", err)
	}
	if err := tr.CanDiscard(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("discard submitted: expected ErrInvalidTransition, got %v", err)
	}

	if err := tr.Cancel(now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if tr.Status != TransferStatusCancelled || tr.CancelledAt == nil {
		t.Fatalf("expected cancelled with timestamp, got %s", tr.Status)
	}

	var transitionErr *TransitionError
	err := tr.Cancel(now)
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if transitionErr.From != TransferStatusCancelled || transitionErr.Action != "cancel" {
		t.Errorf("unexpected transition error: %+v", transitionErr)
	}
}

func TestStockTransfer_Duplicate(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	submittedAt := now.Add(-time.Hour)
	original := &StockTransfer{
		ID:            "st-1",
		Direction:     DirectionInbound,
		Status:        TransferStatusSubmitted,
		BackReference: "pinv-1",
		SubmittedAt:   &submittedAt,
		Items:         []StockTransferItem{item("A", "2", 5)},
		TotalAmount:   decimal.NewFromInt(10),
		Version:       3,
	}

	dup := original.Duplicate("st-2", now)

	if dup.ID != "st-2" || dup.Status != TransferStatusDraft {
		t.Fatalf("expected new draft st-2, got %s/%s", dup.ID, dup.Status)
	}
	if dup.HasBackReference() {
		t.Errorf("duplicate must not be linked to the invoice, got %q", dup.BackReference)
	}
	if dup.SubmittedAt != nil || dup.Version != 0 {
		t.Errorf("duplicate carried lifecycle state over")
	}
	if dup.Direction != original.Direction || !dup.TotalAmount.Equal(original.TotalAmount) {
		t.Errorf("duplicate lost direction or total")
	}

	dup.Items[0].Item = "changed"
	if original.Items[0].Item != "A" {
		t.Errorf("duplicate shares lines with the original")
	}
}

func TestExtractMovements(t *testing.T) {
	items := []StockTransferItem{item("A", "1", 1), item("B", "2", 3)}

	out := ExtractMovements(&StockTransfer{Direction: DirectionOutbound, Items: items})
	if len(out) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(out))
	}
	for _, m := range out {
		if m.FromLocation != "Stores" || m.ToLocation != "" {
			t.Errorf("outbound movement must leave Stores, got %+v", m)
		}
	}

	in := ExtractMovements(&StockTransfer{Direction: DirectionInbound, Items: items})
	for _, m := range in {
		if m.ToLocation != "Stores" || m.FromLocation != "" {
			t.Errorf("inbound movement must arrive at Stores, got %+v", m)
		}
	}
	if in[1].Item != "B" || !in[1].Quantity.Decimal.Equal(decimal.NewFromInt(3)) {
		t.Errorf("movement does not mirror its line: %+v", in[1])
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		direction Direction
		required  []SettingKey
		rule      PostingRule
		kind      InvoiceKind
	}{
		{
			direction: DirectionOutbound,
			required:  []SettingKey{SettingStockInHand, SettingCostOfGoodsSold},
			rule:      PostingRule{Debit: SettingCostOfGoodsSold, Credit: SettingStockInHand},
			kind:      InvoiceKindSales,
		},
		{
			direction: DirectionInbound,
			required:  []SettingKey{SettingStockInHand, SettingStockReceivedButNotBilled},
			rule:      PostingRule{Debit: SettingStockInHand, Credit: SettingStockReceivedButNotBilled},
			kind:      InvoiceKindPurchase,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			parsed, err := ParseDirection(string(tt.direction))
			if err != nil || parsed != tt.direction {
				t.Fatalf("parse: got %s, %v", parsed, err)
			}
			required := tt.direction.RequiredSettings()
			if len(required) != len(tt.required) {
				t.Fatalf("expected %v, got %v", tt.required, required)
			}
			for i := range required {
				if required[i] != tt.required[i] {
					t.Errorf("required[%d]: expected %s, got %s", i, tt.required[i], required[i])
				}
			}
			if tt.direction.PostingRule() != tt.rule {
				t.Errorf("expected rule %+v, got %+v", tt.rule, tt.direction.PostingRule())
			}
			if tt.direction.InvoiceKind() != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.direction.InvoiceKind())
			}
		})
	}

	if _, err := ParseDirection("sale"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}
