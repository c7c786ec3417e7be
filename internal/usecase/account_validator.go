package usecase

import (
	"context"
	"fmt"

	"github.com/iho/stockledger/internal/domain"
)

// AccountValidator checks that every account a transfer posts to is
// configured and present in the ledger.
type AccountValidator struct {
	settings    SettingsProvider
	accountRepo AccountRepository
}

// NewAccountValidator creates a new AccountValidator.
func NewAccountValidator(settings SettingsProvider, accountRepo AccountRepository) *AccountValidator {
	return &AccountValidator{
		settings:    settings,
		accountRepo: accountRepo,
	}
}

// Validate returns a *domain.MissingAccountsError listing every required
// setting that is unset or points at an unknown account. Lookup failures are
// returned as is.
func (v *AccountValidator) Validate(ctx context.Context, direction domain.Direction) error {
	if !direction.IsValid() {
		return domain.ErrInvalidDirection
	}

	var messages []string
	for _, key := range direction.RequiredSettings() {
		value, ok, err := v.settings.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read setting %s: %w", key, err)
		}
		if !ok {
			messages = append(messages, fmt.Sprintf("%s account not set", key.Label()))
			continue
		}

		exists, err := v.accountRepo.Exists(ctx, value)
		if err != nil {
			return fmt.Errorf("check account %s: %w", value, err)
		}
		if !exists {
			messages = append(messages, fmt.Sprintf("Account %s does not exist.", value))
		}
	}

	if len(messages) > 0 {
		return &domain.MissingAccountsError{Messages: messages}
	}
	return nil
}
