package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the side of a ledger entry.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// PostingEntry is a single debit or credit line of a posting.
type PostingEntry struct {
	AccountID string
	Side      Side
	Amount    decimal.Decimal
	RoundOff  bool
}

// LedgerPosting is the balanced set of entries recording the financial
// effect of one stock transfer.
type LedgerPosting struct {
	CreatedAt  time.Time
	ID         string
	TransferID string
	Entries    []PostingEntry
	RoundOff   *PostingEntry
}

// Debit appends a debit entry.
func (p *LedgerPosting) Debit(accountID string, amount decimal.Decimal) {
	p.Entries = append(p.Entries, PostingEntry{AccountID: accountID, Side: SideDebit, Amount: amount})
}

// Credit appends a credit entry.
func (p *LedgerPosting) Credit(accountID string, amount decimal.Decimal) {
	p.Entries = append(p.Entries, PostingEntry{AccountID: accountID, Side: SideCredit, Amount: amount})
}

// AllEntries returns the primary entries followed by the round-off entry, if any.
func (p *LedgerPosting) AllEntries() []PostingEntry {
	all := make([]PostingEntry, 0, len(p.Entries)+1)
	all = append(all, p.Entries...)
	if p.RoundOff != nil {
		all = append(all, *p.RoundOff)
	}
	return all
}

// Totals returns the summed debits and credits including the round-off entry.
func (p *LedgerPosting) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range p.AllEntries() {
		switch e.Side {
		case SideDebit:
			debits = debits.Add(e.Amount)
		case SideCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// IsBalanced reports whether debits equal credits.
func (p *LedgerPosting) IsBalanced() bool {
	debits, credits := p.Totals()
	return debits.Equal(credits)
}

// ApplyRoundOff rounds every primary entry to precision decimal places and, when
// the rounded sides differ, books the difference against roundOffAccount on
// the lighter side.
func (p *LedgerPosting) ApplyRoundOff(precision int32, roundOffAccount string) error {
	p.RoundOff = nil
	for i := range p.Entries {
		p.Entries[i].Amount = p.Entries[i].Amount.Round(precision)
	}

	debits, credits := p.Totals()
	diff := debits.Sub(credits)
	if diff.IsZero() {
		return nil
	}
	if roundOffAccount == "" {
		return ErrRoundOffAccountNotSet
	}

	side := SideCredit
	if diff.IsNegative() {
		side = SideDebit
	}
	p.RoundOff = &PostingEntry{
		AccountID: roundOffAccount,
		Side:      side,
		Amount:    diff.Abs(),
		RoundOff:  true,
	}
	return nil
}

// Validate checks the posting is balanced.
func (p *LedgerPosting) Validate() error {
	if !p.IsBalanced() {
		return ErrPostingUnbalanced
	}
	return nil
}
