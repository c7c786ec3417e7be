package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// PostingRepository implements usecase.PostingRepository. A posting's
// entries are stored in order with the round off entry, if any, last.
type PostingRepository struct {
	q Querier
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(q Querier) *PostingRepository {
	return &PostingRepository{q: q}
}

// Create inserts the posting and its entries.
func (r *PostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.LedgerPosting) error {
	q := on(tx, r.q)

	_, err := q.Exec(ctx,
		`INSERT INTO ledger_postings (id, transfer_id, created_at) VALUES ($1, $2, $3)`,
		posting.ID, posting.TransferID, posting.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.TransitionError{From: domain.TransferStatusSubmitted, Action: "submit"}
		}
		return err
	}

	for i, e := range posting.AllEntries() {
		_, err := q.Exec(ctx, `
			INSERT INTO posting_entries (posting_id, position, account_id, side, amount, round_off)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			posting.ID, i, e.AccountID, string(e.Side), e.Amount, e.RoundOff,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByTransfer returns the posting booked for a transfer, or nil when the
// transfer was never submitted.
func (r *PostingRepository) GetByTransfer(ctx context.Context, transferID string) (*domain.LedgerPosting, error) {
	posting := &domain.LedgerPosting{TransferID: transferID}
	err := r.q.QueryRow(ctx,
		`SELECT id, created_at FROM ledger_postings WHERE transfer_id = $1`, transferID,
	).Scan(&posting.ID, &posting.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT account_id, side, amount, round_off
		FROM posting_entries WHERE posting_id = $1 ORDER BY position`, posting.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e    domain.PostingEntry
			side string
		)
		if err := rows.Scan(&e.AccountID, &side, &e.Amount, &e.RoundOff); err != nil {
			return nil, err
		}
		e.Side = domain.Side(side)
		if e.RoundOff {
			entry := e
			posting.RoundOff = &entry
			continue
		}
		posting.Entries = append(posting.Entries, e)
	}
	return posting, rows.Err()
}
