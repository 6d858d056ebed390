package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, LoyaltyBronze},
		{49, LoyaltyBronze},
		{50, LoyaltySilver},
		{99, LoyaltySilver},
		{100, LoyaltyGold},
		{199, LoyaltyGold},
		{200, LoyaltyDiamond},
		{5000, LoyaltyDiamond},
	}
	for _, tc := range cases {
		if got := TierFor(tc.points); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.points, got, tc.want)
		}
	}
}

func TestTierForIsNonDecreasing(t *testing.T) {
	rank := map[string]int{LoyaltyBronze: 0, LoyaltySilver: 1, LoyaltyGold: 2, LoyaltyDiamond: 3}
	prev := rank[TierFor(0)]
	for p := 1; p <= 300; p++ {
		cur := rank[TierFor(p)]
		if cur < prev {
			t.Fatalf("tier dropped at %d points", p)
		}
		prev = cur
	}
}

func TestPointsFor(t *testing.T) {
	cases := map[string]int{
		"0":        0,
		"999.99":   0,
		"1000":     1,
		"12345":    12,
		"5000":     5,
		"-300":     0,
		"20999.50": 20,
	}
	for in, want := range cases {
		if got := PointsFor(decimal.RequireFromString(in)); got != want {
			t.Errorf("PointsFor(%s) = %d, want %d", in, got, want)
		}
	}
}
