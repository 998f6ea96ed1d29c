package game

import (
	"math"

	"github.com/bigbadman-lab/onesol/internal/types"
)

const (
	// StartingBalance is the SOL balance a fresh run begins with.
	StartingBalance = 10.0

	// DefaultPNLCap is the winning-multiplier ceiling when none is
	// configured: the 2025 set's best positive return (350%) over 100.
	DefaultPNLCap = 3.5
)

// PNL settles one wager. A correct call pays bet times the trade's absolute
// return as a multiplier, capped; an incorrect call loses the bet. Rounded
// to 2 decimal places.
func PNL(bet float64, prediction types.Prediction, outcome types.Outcome, returnPct, cap float64) float64 {
	if prediction == outcome {
		mult := math.Min(math.Abs(returnPct)/100, cap)
		return round2(bet * mult)
	}
	return round2(-bet)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
