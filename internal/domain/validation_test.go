package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Stock In Hand - Main"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateQuantity(t *testing.T) {
	t.Parallel()

	if err := ValidateQuantity(decimal.Zero); err != nil {
		t.Fatalf("expected zero quantity to be allowed, got %v", err)
	}

	if err := ValidateQuantity(decimal.NewFromFloat(2.5)); err != nil {
		t.Fatalf("expected fractional quantity to be allowed, got %v", err)
	}

	if err := ValidateQuantity(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	huge := decimal.RequireFromString(MaxLineQuantity).Add(decimal.NewFromInt(1))
	if err := ValidateQuantity(huge); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected ErrQuantityTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		limit, offset          int
		wantLimit, wantOffset  int
	}{
		{"defaults", 0, 0, 50, 0},
		{"capped", 5000, 10, 1000, 10},
		{"negative offset", 20, -3, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := ValidatePagination(tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.wantLimit, tt.wantOffset, limit, offset)
			}
		})
	}
}
