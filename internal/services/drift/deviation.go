package drift

import (
	"math"

	"DriftWatch/internal/domain/models"
)

// Ratio computes current ÷ baseline as a tagged deviation. Negative current
// values are clamped to zero before division. A zero baseline with nonzero
// current yields the infinite sentinel; zero over zero is exactly 1.0 (no
// drift). Finite ratios are rounded to 4 decimal places.
func Ratio(current, baseline float64) models.Deviation {
	if current < 0 {
		current = 0
	}
	if baseline == 0 {
		if current > 0 {
			return models.Infinite()
		}
		return models.Finite(1.0)
	}
	return models.Finite(round4(current / baseline))
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
