package domain

// SettingKey identifies an account setting in the accounting configuration.
type SettingKey string

const (
	SettingStockInHand               SettingKey = "stockInHand"
	SettingCostOfGoodsSold           SettingKey = "costOfGoodsSold"
	SettingStockReceivedButNotBilled SettingKey = "stockReceivedButNotBilled"
	SettingRoundOffAccount           SettingKey = "roundOffAccount"
)

var settingLabels = map[SettingKey]string{
	SettingStockInHand:               "Stock In Hand",
	SettingCostOfGoodsSold:           "Cost Of Goods Sold",
	SettingStockReceivedButNotBilled: "Stock Received But Not Billed",
	SettingRoundOffAccount:           "Round Off",
}

// AllSettings lists every account setting the ledger reads.
func AllSettings() []SettingKey {
	return []SettingKey{
		SettingStockInHand,
		SettingCostOfGoodsSold,
		SettingStockReceivedButNotBilled,
		SettingRoundOffAccount,
	}
}

// Label returns the human readable name of the setting.
func (k SettingKey) Label() string {
	if label, ok := settingLabels[k]; ok {
		return label
	}
	return string(k)
}

// IsValid reports whether k is a known setting.
func (k SettingKey) IsValid() bool {
	_, ok := settingLabels[k]
	return ok
}
