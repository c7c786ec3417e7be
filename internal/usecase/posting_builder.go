package usecase

import (
	"context"
	"fmt"

	"github.com/iho/stockledger/internal/domain"
)

// PostingBuilder turns a stock transfer into a balanced ledger posting.
// Callers run AccountValidator first.
type PostingBuilder struct {
	settings  SettingsProvider
	precision int32
}

// NewPostingBuilder creates a new PostingBuilder rounding to precision
// decimal places.
func NewPostingBuilder(settings SettingsProvider, precision int32) *PostingBuilder {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &PostingBuilder{
		settings:  settings,
		precision: precision,
	}
}

// Build debits and credits the direction's accounts with the transfer total
// and appends a round off entry when the rounded sides differ.
func (b *PostingBuilder) Build(ctx context.Context, transfer *domain.StockTransfer) (*domain.LedgerPosting, error) {
	total, ok := transfer.ComputeTotal()
	if !ok {
		return nil, domain.ErrTotalNotComputable
	}

	rule := transfer.Direction.PostingRule()

	debitAccount, err := b.account(ctx, rule.Debit)
	if err != nil {
		return nil, err
	}
	creditAccount, err := b.account(ctx, rule.Credit)
	if err != nil {
		return nil, err
	}

	posting := &domain.LedgerPosting{TransferID: transfer.ID}
	posting.Debit(debitAccount, total)
	posting.Credit(creditAccount, total)

	roundOff, _, err := b.settings.Get(ctx, domain.SettingRoundOffAccount)
	if err != nil {
		return nil, fmt.Errorf("read setting %s: %w", domain.SettingRoundOffAccount, err)
	}
	if err := posting.ApplyRoundOff(b.precision, roundOff); err != nil {
		return nil, err
	}

	if err := posting.Validate(); err != nil {
		return nil, err
	}
	return posting, nil
}

func (b *PostingBuilder) account(ctx context.Context, key domain.SettingKey) (string, error) {
	value, ok, err := b.settings.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	if !ok {
		return "", &domain.MissingAccountsError{
			Messages: []string{fmt.Sprintf("%s account not set", key.Label())},
		}
	}
	return value, nil
}
