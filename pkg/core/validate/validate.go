// Package validate provides statement sanity checks. The engine runs
// these after extraction so vendor data problems surface in the logs
// before they reach a valuation.
package validate

import "math"

// CalculateYoY returns the percent change from prior to current.
// An empty or non-positive prior period reports 0 so the result is
// always safe to serialize.
func CalculateYoY(current, prior float64) float64 {
	if prior <= 0 {
		return 0
	}
	return (current - prior) / prior * 100
}

// BalanceCheck reports how well the balance sheet identity holds for
// one reporting period.
type BalanceCheck struct {
	Assets      float64
	Liabilities float64
	Equity      float64
	Difference  float64 // assets - (liabilities + equity)
	Relative    float64 // |Difference| / |assets|
	Balanced    bool
}

// CheckBalanceEquation verifies assets = liabilities + equity within a
// relative tolerance. Vendor tables round to billions, so a small gap
// is normal; 0.01 tolerates one percent of total assets.
func CheckBalanceEquation(assets, liabilities, equity, tolerance float64) *BalanceCheck {
	diff := assets - (liabilities + equity)
	rel := 0.0
	if assets != 0 {
		rel = math.Abs(diff) / math.Abs(assets)
	}
	return &BalanceCheck{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Difference:  diff,
		Relative:    rel,
		Balanced:    rel <= tolerance,
	}
}
