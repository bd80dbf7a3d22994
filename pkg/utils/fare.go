package utils

import "math"

// The upstream provider quotes a single total per pricing option and
// does not break it down. The split below is an inherited estimate of
// unclear provenance, kept as-is rather than re-derived: callers must
// treat base/taxes/fees as approximations, only the total is quoted.
const (
	BaseFareShare = 0.80
	TaxesShare    = 0.15
	FeesShare     = 0.05
)

// SplitFare estimates the base/taxes/fees breakdown of a quoted total
func SplitFare(total float64) (base, taxes, fees float64) {
	return total * BaseFareShare, total * TaxesShare, total * FeesShare
}

// Round2 rounds a monetary amount to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
