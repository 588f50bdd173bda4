package derive

import "github.com/shopspring/decimal"

// LineTotal is unitPrice * quantity * (1 - discount) in decimal
// arithmetic, so repeated summation never drifts by pennies.
func LineTotal(unitPrice decimal.Decimal, quantity int, discount float64) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount))
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(factor)
}

// OrderTotal sums the line totals and adds freight.
func OrderTotal(lineTotals []decimal.Decimal, freight decimal.Decimal) decimal.Decimal {
	total := freight
	for _, lt := range lineTotals {
		total = total.Add(lt)
	}
	return total
}
