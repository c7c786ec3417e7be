package domain

import "github.com/shopspring/decimal"

// StockMovement describes the physical movement of one transfer line.
// Exactly one of FromLocation and ToLocation is set.
type StockMovement struct {
	Item         string
	Rate         decimal.Decimal
	Quantity     decimal.NullDecimal
	FromLocation string
	ToLocation   string
}

// ExtractMovements maps each transfer line to a movement. Outbound lines leave
// their location, inbound lines arrive at it.
func ExtractMovements(t *StockTransfer) []StockMovement {
	movements := make([]StockMovement, 0, len(t.Items))
	for _, item := range t.Items {
		m := StockMovement{
			Item:     item.Item,
			Rate:     item.Rate,
			Quantity: item.Quantity,
		}
		if t.Direction == DirectionOutbound {
			m.FromLocation = item.Location
		} else {
			m.ToLocation = item.Location
		}
		movements = append(movements, m)
	}
	return movements
}
