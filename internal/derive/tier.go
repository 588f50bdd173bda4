package derive

import "github.com/shopspring/decimal"

// Customer tiers by lifetime spend.
const (
	TierPlatinum = "Platinum"
	TierGold     = "Gold"
	TierSilver   = "Silver"
	TierBronze   = "Bronze"
)

var (
	platinumFloor = decimal.NewFromInt(50000)
	goldFloor     = decimal.NewFromInt(25000)
	silverFloor   = decimal.NewFromInt(10000)
)

// Tier maps total spend to a tier. Floors are inclusive.
func Tier(spend decimal.Decimal) string {
	switch {
	case spend.GreaterThanOrEqual(platinumFloor):
		return TierPlatinum
	case spend.GreaterThanOrEqual(goldFloor):
		return TierGold
	case spend.GreaterThanOrEqual(silverFloor):
		return TierSilver
	default:
		return TierBronze
	}
}
