package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
)

func TestPostingRepositoryCreateWritesRoundOffLast(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Now()

	posting := &domain.LedgerPosting{ID: "p-1", TransferID: "st-1", CreatedAt: now}
	posting.Debit("acc-cogs", decimal.RequireFromString("10.00"))
	posting.Credit("acc-stock", decimal.RequireFromString("10.00"))
	posting.RoundOff = &domain.PostingEntry{AccountID: "acc-round", Side: domain.SideCredit, Amount: decimal.Zero, RoundOff: true}

	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO ledger_postings").
		WithArgs("p-1", "st-1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for i, e := range posting.AllEntries() {
		mockPool.ExpectExec("INSERT INTO posting_entries").
			WithArgs("p-1", i, e.AccountID, string(e.Side), e.Amount, e.RoundOff).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := NewPostingRepository(mockPool).Create(context.Background(), tx, posting); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestPostingRepositoryCreateDuplicate(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO ledger_postings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mockPool.ExpectRollback()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = NewPostingRepository(mockPool).Create(context.Background(), tx, &domain.LedgerPosting{ID: "p-2", TransferID: "st-1"})
	_ = tx.Rollback(context.Background())

	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestPostingRepositoryGetByTransfer(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Now()

	mockPool.ExpectQuery("FROM ledger_postings WHERE transfer_id").
		WithArgs("st-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("p-1", now))
	mockPool.ExpectQuery("FROM posting_entries WHERE posting_id").
		WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "side", "amount", "round_off"}).
			AddRow("acc-stock", "debit", decimal.RequireFromString("1.00"), false).
			AddRow("acc-srbnb", "credit", decimal.RequireFromString("1.00"), false))

	posting, err := NewPostingRepository(mockPool).GetByTransfer(context.Background(), "st-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posting.ID != "p-1" || len(posting.Entries) != 2 || posting.RoundOff != nil {
		t.Fatalf("unexpected posting %+v", posting)
	}
	if !posting.IsBalanced() {
		t.Errorf("stored posting must balance")
	}

	assertExpectations(t, mockPool)
}

func TestPostingRepositoryGetByTransferNone(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM ledger_postings WHERE transfer_id").
		WithArgs("st-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}))

	posting, err := NewPostingRepository(mockPool).GetByTransfer(context.Background(), "st-1")
	if err != nil || posting != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", posting, err)
	}
}
