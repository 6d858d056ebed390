package models

import "github.com/shopspring/decimal"

// Loyalty tiers
const (
	LoyaltyBronze  = "bronze"
	LoyaltySilver  = "silver"
	LoyaltyGold    = "gold"
	LoyaltyDiamond = "diamond"
)

// PointsPerUnit is how much spend earns one point.
var PointsPerUnit = decimal.NewFromInt(1000)

var tierThresholds = []struct {
	min  int
	tier string
}{
	{200, LoyaltyDiamond},
	{100, LoyaltyGold},
	{50, LoyaltySilver},
}

// TierFor maps a point balance onto its tier. First match wins, highest first.
func TierFor(points int) string {
	for _, th := range tierThresholds {
		if points >= th.min {
			return th.tier
		}
	}
	return LoyaltyBronze
}

// PointsFor returns the points earned by a subtotal, floored.
func PointsFor(subtotal decimal.Decimal) int {
	if subtotal.IsNegative() {
		return 0
	}
	return int(subtotal.Div(PointsPerUnit).Floor().IntPart())
}
