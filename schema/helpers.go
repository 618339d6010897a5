package schema

import (
	"fmt"
	"math"
)

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatConfidence renders a confidence score as a percentage string,
// e.g. 0.9312 becomes "93.12%".
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
