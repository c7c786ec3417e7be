package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
)

func TestInvoiceRepositoryGetByIDForUpdate(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Now()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery("FROM invoices WHERE id = .+ FOR UPDATE").
		WithArgs("inv-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "stock_not_transferred", "version", "created_at", "updated_at"}).
			AddRow("inv-1", "sales", decimal.NewFromInt(13), int64(4), now, now))
	mockPool.ExpectQuery("FROM invoice_lines WHERE invoice_id").
		WithArgs("inv-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "item", "quantity", "stock_not_transferred"}).
			AddRow("l1", "A", decimal.NewFromInt(10), decimal.NewNullDecimal(decimal.NewFromInt(6))).
			AddRow("l2", "B", decimal.NewFromInt(7), decimal.NewNullDecimal(decimal.NewFromInt(7))).
			AddRow("l3", "C", decimal.NewFromInt(2), nil))
	mockPool.ExpectRollback()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	inv, err := NewInvoiceRepository(mockPool).GetByIDForUpdate(context.Background(), tx, "inv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = tx.Rollback(context.Background())

	if inv.Kind != domain.InvoiceKindSales || inv.Version != 4 {
		t.Errorf("unexpected header %+v", inv)
	}
	if len(inv.Lines) != 3 || inv.Lines[0].ID != "l1" || inv.Lines[2].ID != "l3" {
		t.Fatalf("unexpected lines %+v", inv.Lines)
	}
	if !inv.Lines[0].NotTransferred().Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected l1 not transferred 6, got %s", inv.Lines[0].NotTransferred())
	}
	if inv.Lines[2].StockNotTransferred.Valid {
		t.Errorf("expected l3 not transferred to be undefined")
	}

	assertExpectations(t, mockPool)
}

func TestInvoiceRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM invoices WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "stock_not_transferred", "version", "created_at", "updated_at"}))

	_, err := NewInvoiceRepository(mockPool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestInvoiceRepositoryUpdateStockNotTransferred(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "version matches", affected: 1},
		{name: "stale version", affected: 0, wantErr: domain.ErrInvoiceVersionStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			now := time.Now()

			mockPool.ExpectBegin()
			mockPool.ExpectExec("UPDATE invoices").
				WithArgs("inv-1", decimal.NewFromInt(6), int64(3), now).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			mockPool.ExpectRollback()

			tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
			if err != nil {
				t.Fatalf("begin: %v", err)
			}

			err = NewInvoiceRepository(mockPool).UpdateStockNotTransferred(context.Background(), tx, "inv-1", decimal.NewFromInt(6), 3, now)
			_ = tx.Rollback(context.Background())

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			assertExpectations(t, mockPool)
		})
	}
}

func TestInvoiceRepositoryUpdateLine(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE invoice_lines SET stock_not_transferred").
		WithArgs("l1", decimal.NewFromInt(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := NewInvoiceRepository(mockPool).UpdateLineStockNotTransferred(context.Background(), tx, "l1", decimal.NewFromInt(6)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestInvoiceRepositoryCreateKeepsLineOrder(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Now()

	inv := &domain.Invoice{
		ID:                  "inv-1",
		Kind:                domain.InvoiceKindPurchase,
		StockNotTransferred: decimal.NewFromInt(5),
		CreatedAt:           now,
		UpdatedAt:           now,
		Lines: []domain.InvoiceLine{
			{ID: "l1", Item: "B", Quantity: decimal.NewFromInt(3), StockNotTransferred: decimal.NewNullDecimal(decimal.NewFromInt(3))},
			{ID: "l2", Item: "A", Quantity: decimal.NewFromInt(2), StockNotTransferred: decimal.NewNullDecimal(decimal.NewFromInt(2))},
		},
	}

	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO invoices").
		WithArgs("inv-1", "purchase", inv.StockNotTransferred, int64(0), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO invoice_lines").
		WithArgs("l1", "inv-1", 0, "B", inv.Lines[0].Quantity, inv.Lines[0].StockNotTransferred).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO invoice_lines").
		WithArgs("l2", "inv-1", 1, "A", inv.Lines[1].Quantity, inv.Lines[1].StockNotTransferred).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := NewInvoiceRepository(mockPool).Create(context.Background(), tx, inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}
