package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Account errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountsNotConfigured = errors.New("ledger accounts not configured")
	ErrRoundOffAccountNotSet = errors.New("round off account not set")
	ErrInvalidSetting        = errors.New("invalid account setting")

	// Stock transfer errors
	ErrStockTransferNotFound = errors.New("stock transfer not found")
	ErrInvalidDirection      = errors.New("invalid transfer direction")
	ErrInvalidQuantity       = errors.New("quantity must not be negative")
	ErrInvalidRate           = errors.New("rate must not be negative")
	ErrTransferNotEditable   = errors.New("stock transfer is not a draft")
	ErrTotalNotComputable    = errors.New("stock transfer total cannot be computed")

	// Invoice errors
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvoiceEmpty        = errors.New("invoice has no lines")
	ErrInvalidInvoiceKind  = errors.New("invalid invoice kind")
	ErrInvoiceLocked       = errors.New("invoice is being reconciled by another transfer")
	ErrInvoiceVersionStale = errors.New("invoice was modified concurrently")

	// Posting errors
	ErrPostingUnbalanced = errors.New("posting debits do not equal credits")
)

// MissingAccountsError reports every account setting that is unset or that
// points at an account missing from the ledger.
type MissingAccountsError struct {
	Messages []string
}

func (e *MissingAccountsError) Error() string {
	return strings.Join(e.Messages, "\n")
}

func (e *MissingAccountsError) Unwrap() error {
	return ErrAccountsNotConfigured
}

// TransitionError is returned when a lifecycle action is not allowed from
// the transfer's current status.
type TransitionError struct {
	From   TransferStatus
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a stock transfer in status %s", e.Action, e.From)
}

// ErrInvalidTransition is the sentinel matched by every TransitionError.
var ErrInvalidTransition = errors.New("invalid stock transfer transition")

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
