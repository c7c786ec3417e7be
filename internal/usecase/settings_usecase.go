package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iho/stockledger/internal/domain"
)

// SettingsUseCase manages the ledger account configuration.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
	accountRepo  AccountRepository
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(settingsRepo SettingsRepository, accountRepo AccountRepository) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		accountRepo:  accountRepo,
	}
}

// AccountSetting is one configured (or unset) account setting.
type AccountSetting struct {
	Key       domain.SettingKey
	Label     string
	AccountID string
}

// GetAccountSettings returns every account setting in a fixed order. Unset
// settings have an empty AccountID.
func (uc *SettingsUseCase) GetAccountSettings(ctx context.Context) ([]AccountSetting, error) {
	values, err := uc.settingsRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AccountSetting, 0, len(domain.AllSettings()))
	for _, key := range domain.AllSettings() {
		out = append(out, AccountSetting{
			Key:       key,
			Label:     key.Label(),
			AccountID: values[key],
		})
	}
	return out, nil
}

// SetAccountSettings stores the given settings. An empty value clears a
// setting; a non-empty value must name an existing account.
func (uc *SettingsUseCase) SetAccountSettings(ctx context.Context, values map[domain.SettingKey]string) error {
	for key, value := range values {
		if !key.IsValid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidSetting, key)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		exists, err := uc.accountRepo.Exists(ctx, value)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, value)
		}
	}

	now := time.Now().UTC()
	for _, key := range domain.AllSettings() {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := uc.settingsRepo.Set(ctx, key, strings.TrimSpace(value), now); err != nil {
			return err
		}
	}
	return nil
}
