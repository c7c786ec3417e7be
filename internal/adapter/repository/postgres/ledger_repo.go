package postgres

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(q Querier) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// CheckConsistency sums every posted debit and credit.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalDebits decimal.Decimal, totalCredits decimal.Decimal, err error) {
	err = r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE side = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE side = 'credit'), 0)
		FROM posting_entries`,
	).Scan(&totalDebits, &totalCredits)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return totalDebits, totalCredits, nil
}
