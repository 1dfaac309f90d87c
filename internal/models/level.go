package models

import "github.com/shopspring/decimal"

const (
	LevelJunior = "Junior"
	LevelMiddle = "Middle"
	LevelSenior = "Senior"
)

var (
	middleThreshold = decimal.NewFromInt(31)
	seniorThreshold = decimal.NewFromInt(71)
)

// LevelForCoins maps a balance onto the three-tier level ladder.
func LevelForCoins(coins decimal.Decimal) string {
	switch {
	case coins.GreaterThanOrEqual(seniorThreshold):
		return LevelSenior
	case coins.GreaterThanOrEqual(middleThreshold):
		return LevelMiddle
	default:
		return LevelJunior
	}
}

// CoinsToNextLevel returns the distance to the next threshold, zero at the top tier.
func CoinsToNextLevel(coins decimal.Decimal) decimal.Decimal {
	switch {
	case coins.GreaterThanOrEqual(seniorThreshold):
		return decimal.Zero
	case coins.GreaterThanOrEqual(middleThreshold):
		return seniorThreshold.Sub(coins)
	default:
		return middleThreshold.Sub(coins)
	}
}
