// Package pricing holds the money arithmetic for carts and orders. All
// amounts are exact decimals; float64 is never used for money.
package pricing

import "github.com/shopspring/decimal"

// LineTotal returns unitPrice * quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds line totals. Accumulation is commutative, so line order never
// affects the result.
func Sum(lineTotals []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range lineTotals {
		total = total.Add(t)
	}
	return total
}
