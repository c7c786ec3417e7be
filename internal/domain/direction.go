package domain

import "fmt"

// Direction tells which way stock moves for a transfer.
type Direction string

const (
	// DirectionOutbound is a shipment against a sales invoice. Stock leaves a location.
	DirectionOutbound Direction = "outbound"
	// DirectionInbound is a receipt against a purchase invoice. Stock arrives at a location.
	DirectionInbound Direction = "inbound"
)

// PostingRule names the settings whose accounts are debited and credited
// when a transfer in a given direction is posted.
type PostingRule struct {
	Debit  SettingKey
	Credit SettingKey
}

type directionRule struct {
	required    []SettingKey
	posting     PostingRule
	invoiceKind InvoiceKind
}

var directionRules = map[Direction]directionRule{
	DirectionOutbound: {
		required:    []SettingKey{SettingStockInHand, SettingCostOfGoodsSold},
		posting:     PostingRule{Debit: SettingCostOfGoodsSold, Credit: SettingStockInHand},
		invoiceKind: InvoiceKindSales,
	},
	DirectionInbound: {
		required:    []SettingKey{SettingStockInHand, SettingStockReceivedButNotBilled},
		posting:     PostingRule{Debit: SettingStockInHand, Credit: SettingStockReceivedButNotBilled},
		invoiceKind: InvoiceKindPurchase,
	},
}

// ParseDirection parses a direction string.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if _, ok := directionRules[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	_, ok := directionRules[d]
	return ok
}

// RequiredSettings returns the account settings that must be configured
// before a transfer in this direction can be posted, in reporting order.
func (d Direction) RequiredSettings() []SettingKey {
	out := make([]SettingKey, len(directionRules[d].required))
	copy(out, directionRules[d].required)
	return out
}

// PostingRule returns the debit/credit settings for this direction.
func (d Direction) PostingRule() PostingRule {
	return directionRules[d].posting
}

// InvoiceKind returns the kind of invoice a transfer in this direction references.
func (d Direction) InvoiceKind() InvoiceKind {
	return directionRules[d].invoiceKind
}
