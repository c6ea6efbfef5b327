package valuation

import (
	"math"

	"stockval/pkg/core/metrics"
)

// =============================================================================
// VALUATION MODELS
// Each model maps normalized metrics plus assumptions to a per-share value,
// or Unavailable when its inputs or preconditions fail.
// =============================================================================

// Fallback multiples for the justified models when the required return
// does not exceed the implied growth rate. Documented conservative
// defaults, not computed values.
const (
	fallbackPEMultiple = 15.0
	fallbackPBMultiple = 1.0
)

// FCFE discounts projected free cash flow to equity at the cost of equity.
//
//	FCFE = net income + non-cash charges + net borrowing
//	       - working capital change + fixed capital investment
//
// The investment term combines capital expenditure and disposal proceeds,
// both flow through the same purchase/disposal line in source statements.
func FCFE(m metrics.Metrics, a Assumptions) float64 {
	ni, ok := m.Get(metrics.NetIncome)
	if !ok {
		return Unavailable
	}
	base := ni +
		m.Val(metrics.Depreciation) +
		m.Val(metrics.NetBorrowing) -
		m.Val(metrics.WorkingCapChange) +
		m.Val(metrics.Capex)
	return discountedPerShare(m, a, base, a.CostOfEquity)
}

// FCFF discounts free cash flow to the firm at the weighted average cost
// of capital. After-tax interest replaces net borrowing in the base flow.
func FCFF(m metrics.Metrics, a Assumptions) float64 {
	ni, ok := m.Get(metrics.NetIncome)
	if !ok {
		return Unavailable
	}
	afterTaxInterest := math.Abs(m.Val(metrics.InterestExpense)) * (1 - a.TaxRate)
	base := ni +
		m.Val(metrics.Depreciation) +
		afterTaxInterest -
		m.Val(metrics.WorkingCapChange) +
		m.Val(metrics.Capex)
	return discountedPerShare(m, a, base, a.WACC)
}

// discountedPerShare projects the base flow at the short-term growth rate,
// adds a Gordon terminal value at the terminal growth rate, discounts
// everything at r and spreads the total over the share count.
//
// The terminal step requires r strictly above the terminal growth rate; a
// violated precondition returns Unavailable instead of a negative
// denominator.
func discountedPerShare(m metrics.Metrics, a Assumptions, base, r float64) float64 {
	shares, ok := m.Get(metrics.SharesOutstanding)
	if !ok || shares <= 0 {
		return Unavailable
	}
	if r <= a.TerminalGrowth || a.ForecastYears <= 0 {
		return Unavailable
	}

	var pv float64
	cf := base
	for i := 0; i < a.ForecastYears; i++ {
		cf *= 1 + a.ShortTermGrowth
		discountFactor := 1.0 / math.Pow(1.0+r, float64(i+1))
		pv += cf * discountFactor
	}

	terminal := cf * (1 + a.TerminalGrowth) / (r - a.TerminalGrowth)
	pv += terminal / math.Pow(1.0+r, float64(a.ForecastYears))

	return pv / shares
}

// JustifiedPE prices the share at a multiple derived from fundamentals
// rather than the observed market multiple.
//
//	g  = roe * (1 - payout)
//	PE = payout * (1 + g) / (r - g)
func JustifiedPE(m metrics.Metrics, a Assumptions) float64 {
	eps, ok := m.Get(metrics.EPS)
	if !ok {
		return Unavailable
	}
	g := impliedGrowth(m, a)
	if a.CostOfEquity <= g {
		return fallbackPEMultiple * eps
	}
	pe := a.PayoutRatio * (1 + g) / (a.CostOfEquity - g)
	return pe * eps
}

// JustifiedPB prices the share at the fundamental price-to-book multiple
// (roe - g) / (r - g). The formula only applies on g < roe < r, where the
// multiple lies in (0, 1]; outside that band the model degrades to the
// conservative 1.0x book multiple rather than paying a premium to book or
// dividing by a non-positive spread.
func JustifiedPB(m metrics.Metrics, a Assumptions) float64 {
	bvps, ok := m.Get(metrics.BookValuePerShare)
	if !ok {
		return Unavailable
	}
	roe := modelROE(m, a)
	g := roe * (1 - a.PayoutRatio)
	if a.CostOfEquity <= g || roe <= g || roe >= a.CostOfEquity {
		return fallbackPBMultiple * bvps
	}
	pb := (roe - g) / (a.CostOfEquity - g)
	return pb * bvps
}

// impliedGrowth is the sustainable dividend growth rate, retention times
// return on equity.
func impliedGrowth(m metrics.Metrics, a Assumptions) float64 {
	return modelROE(m, a) * (1 - a.PayoutRatio)
}

// modelROE prefers the ROE observed in the statements and falls back to
// the scenario's target ROE.
func modelROE(m metrics.Metrics, a Assumptions) float64 {
	if roe, ok := m.Get(metrics.ROE); ok {
		return roe
	}
	return a.TargetROE
}

// RunAll evaluates the four models and aggregates them under the
// scenario's weights.
func RunAll(m metrics.Metrics, a Assumptions) *Result {
	models := map[string]float64{
		ModelFCFE:        FCFE(m, a),
		ModelFCFF:        FCFF(m, a),
		ModelJustifiedPE: JustifiedPE(m, a),
		ModelJustifiedPB: JustifiedPB(m, a),
	}
	return Aggregate(models, a.ModelWeights)
}
