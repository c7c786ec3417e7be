package domain

import "github.com/shopspring/decimal"

// TransferMap holds the quantity a transfer moves per item.
type TransferMap map[string]decimal.Decimal

// BuildTransferMap sums line quantities per item. Lines without an item or
// without a quantity are skipped.
func BuildTransferMap(t *StockTransfer) TransferMap {
	m := make(TransferMap)
	for _, item := range t.Items {
		if item.Item == "" || !item.Quantity.Valid {
			continue
		}
		current, ok := m[item.Item]
		if !ok {
			current = decimal.Zero
		}
		m[item.Item] = current.Add(item.Quantity.Decimal)
	}
	return m
}

// UnmappedLines returns the indexes of transfer lines that BuildTransferMap
// leaves out: lines with no item or no quantity.
func UnmappedLines(t *StockTransfer) []int {
	var out []int
	for i, item := range t.Items {
		if item.Item == "" || !item.Quantity.Valid {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a copy of the map.
func (m TransferMap) Clone() TransferMap {
	out := make(TransferMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ReconcileMode selects the arithmetic applied to invoice lines.
type ReconcileMode int

const (
	// ReconcileSubmit consumes not-transferred quantity.
	ReconcileSubmit ReconcileMode = iota
	// ReconcileCancel gives not-transferred quantity back, capped at the line quantity.
	ReconcileCancel
)

func (m ReconcileMode) String() string {
	if m == ReconcileCancel {
		return "cancel"
	}
	return "submit"
}

// ReconcileResult is the outcome of folding a transfer map over invoice lines.
type ReconcileResult struct {
	Lines    []InvoiceLine
	Residual TransferMap
	// Changed holds the indexes of lines that were processed.
	Changed []int
	// Skipped holds the indexes of lines whose item the transfer does not move.
	Skipped []int
}

// ReconcileLines folds the transfer map over the invoice lines in stored
// order. Each processed line consumes (or returns) what it can and passes the
// residual for its item on to later lines with the same item. The inputs are
// not modified.
func ReconcileLines(transferMap TransferMap, lines []InvoiceLine, mode ReconcileMode) ReconcileResult {
	residual := transferMap.Clone()
	out := make([]InvoiceLine, len(lines))
	copy(out, lines)

	result := ReconcileResult{Lines: out, Residual: residual}

	for i, line := range out {
		transferred, ok := residual[line.Item]
		if !ok {
			result.Skipped = append(result.Skipped, i)
			continue
		}

		notTransferred := line.NotTransferred()
		quantity := line.Quantity

		var next, left decimal.Decimal
		if mode == ReconcileCancel {
			next = decimal.Min(notTransferred.Add(transferred), quantity)
			left = decimal.Max(transferred.Add(notTransferred).Sub(quantity), decimal.Zero)
		} else {
			next = decimal.Max(notTransferred.Sub(transferred), decimal.Zero)
			left = decimal.Max(transferred.Sub(notTransferred), decimal.Zero)
		}

		out[i].StockNotTransferred = decimal.NewNullDecimal(next)
		residual[line.Item] = left
		result.Changed = append(result.Changed, i)
	}

	return result
}
