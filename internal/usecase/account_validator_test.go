package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
	"github.com/iho/stockledger/internal/usecase/gomocks"
)

func TestAccountValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		direction domain.Direction
		settings  map[domain.SettingKey]string
		accounts  map[string]bool
		messages  []string
	}{
		{
			name:      "outbound fully configured",
			direction: domain.DirectionOutbound,
			settings: map[domain.SettingKey]string{
				domain.SettingStockInHand:     "acc-stock",
				domain.SettingCostOfGoodsSold: "acc-cogs",
			},
			accounts: map[string]bool{"acc-stock": true, "acc-cogs": true},
		},
		{
			name:      "inbound fully configured",
			direction: domain.DirectionInbound,
			settings: map[domain.SettingKey]string{
				domain.SettingStockInHand:               "acc-stock",
				domain.SettingStockReceivedButNotBilled: "acc-srbnb",
			},
			accounts: map[string]bool{"acc-stock": true, "acc-srbnb": true},
		},
		{
			name:      "both outbound settings unset",
			direction: domain.DirectionOutbound,
			messages: []string{
				"Stock In Hand account not set",
				"Cost Of Goods Sold account not set",
			},
		},
		{
			name:      "inbound account missing and setting unset",
			direction: domain.DirectionInbound,
			settings: map[domain.SettingKey]string{
				domain.SettingStockInHand: "acc-gone",
			},
			messages: []string{
				"Account acc-gone does not exist.",
				"Stock Received But Not Billed account not set",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			settings := gomocks.NewMockSettingsProvider(ctrl)
			accounts := gomocks.NewMockAccountRepository(ctrl)

			for _, key := range tt.direction.RequiredSettings() {
				value, ok := tt.settings[key]
				settings.EXPECT().Get(gomock.Any(), key).Return(value, ok, nil)
				if ok {
					accounts.EXPECT().Exists(gomock.Any(), value).Return(tt.accounts[value], nil)
				}
			}

			v := usecase.NewAccountValidator(settings, accounts)
			err := v.Validate(context.Background(), tt.direction)

			if len(tt.messages) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var missing *domain.MissingAccountsError
			if !errors.As(err, &missing) {
				t.Fatalf("expected *MissingAccountsError, got %v", err)
			}
			if !errors.Is(err, domain.ErrAccountsNotConfigured) {
				t.Errorf("expected error to match ErrAccountsNotConfigured")
			}
			if strings.Join(missing.Messages, "|") != strings.Join(tt.messages, "|") {
				t.Errorf("expected messages %q, got %q", tt.messages, missing.Messages)
			}
		})
	}
}

func TestAccountValidator_LookupErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	settings := gomocks.NewMockSettingsProvider(ctrl)
	accounts := gomocks.NewMockAccountRepository(ctrl)

	dbErr := errors.New("connection reset")
	settings.EXPECT().Get(gomock.Any(), domain.SettingStockInHand).Return("acc-stock", true, nil)
	accounts.EXPECT().Exists(gomock.Any(), "acc-stock").Return(false, dbErr)

	err := usecase.NewAccountValidator(settings, accounts).Validate(context.Background(), domain.DirectionOutbound)

	if !errors.Is(err, dbErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	var missing *domain.MissingAccountsError
	if errors.As(err, &missing) {
		t.Fatalf("lookup failure must not be reported as a configuration error")
	}
}

func TestAccountValidator_RejectsUnknownDirection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	v := usecase.NewAccountValidator(gomocks.NewMockSettingsProvider(ctrl), gomocks.NewMockAccountRepository(ctrl))

	if err := v.Validate(context.Background(), "sideways"); !errors.Is(err, domain.ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}
