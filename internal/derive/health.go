package derive

import "github.com/shopspring/decimal"

// HealthInput is the slice of a product the score depends on.
type HealthInput struct {
	Discontinued bool
	UnitsInStock int
	UnitPrice    *decimal.Decimal
	HasCategory  bool
	HasSupplier  bool
}

// HealthScore starts at 100 and deducts: 100 for discontinued,
// otherwise 50 for empty stock or 25 for stock under 10; then 20 for a
// missing or non-positive price, 15 for no category, 10 for no
// supplier. Never below zero.
func HealthScore(in HealthInput) int {
	score := 100
	if in.Discontinued {
		score -= 100
	} else if in.UnitsInStock <= 0 {
		score -= 50
	} else if in.UnitsInStock < 10 {
		score -= 25
	}
	if in.UnitPrice == nil || !in.UnitPrice.IsPositive() {
		score -= 20
	}
	if !in.HasCategory {
		score -= 15
	}
	if !in.HasSupplier {
		score -= 10
	}
	if score < 0 {
		return 0
	}
	return score
}
