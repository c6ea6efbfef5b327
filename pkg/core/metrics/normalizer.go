package metrics

import "math"

// =============================================================================
// METRIC NORMALIZATION
// Fills every derivable metric that is still missing and reconciles unit
// anomalies. Direct values always win over formulas.
// =============================================================================

// ratioClass lists the metrics expected to be small fractions. Providers
// deliver these either as raw fractions (0.18) or pre-multiplied
// percentages (18.0); the canonical convention is the raw fraction.
var ratioClass = []string{GrossMargin, EBITMargin, NetProfitMargin, ROE, ROA}

// sharesImplausible is the share count above which the value is assumed to
// be a raw count delivered where thousands were expected. No listed company
// has 100 billion shares outstanding.
const sharesImplausible = 1e11

// Normalize returns a completed metric set. Derivations only fill gaps,
// never overwrite, so running Normalize on its own output changes nothing.
func Normalize(in Metrics) Metrics {
	m := in.Clone()

	canonicalizeRatios(m)
	rescaleShares(m)

	// Equity is frequently missing while both sides of the balance sheet
	// are present.
	m.fill(TotalEquity, diff(TotalAssets, TotalLiabilities))
	m.fill(TotalDebt, copyOf(TotalLiabilities))

	// Margins, as raw fractions.
	m.fill(GrossMargin, ratio(GrossProfit, Revenue))
	m.fill(EBITMargin, ratio(EBIT, Revenue))
	m.fill(NetProfitMargin, ratio(NetIncome, Revenue))

	// Profitability.
	m.fill(ROA, ratio(NetIncome, TotalAssets))
	m.fill(ROE, ratio(NetIncome, TotalEquity))

	// Turnover.
	m.fill(AssetTurnover, ratio(Revenue, TotalAssets))
	m.fill(InventoryTurnover, ratio(Revenue, Inventory))
	m.fill(FixedAssetTurn, ratio(Revenue, FixedAssets))
	m.fill(ReceivablesTurn, ratio(Revenue, Receivables))

	// Liquidity.
	m.fill(CurrentRatio, ratio(CurrentAssets, CurrentLiabs))
	m.fill(QuickRatio, alt{
		needs: []string{CurrentAssets, Inventory, CurrentLiabs},
		ok:    func(v []float64) bool { return v[2] != 0 },
		calc:  func(v []float64) float64 { return (v[0] - v[1]) / v[2] },
	})
	m.fill(CashRatio, ratio(Cash, CurrentLiabs))

	// Leverage. The equity multiplier doubles as financial leverage.
	m.fill(DebtToEquity, ratio(TotalDebt, TotalEquity))
	m.fill(EquityMultiplier, copyOf(FinancialLeverage), ratio(TotalAssets, TotalEquity))
	m.fill(FinancialLeverage, copyOf(EquityMultiplier))

	// Per-share figures.
	m.fill(EPS, ratio(NetIncome, SharesOutstanding))
	m.fill(BookValuePerShare, ratio(TotalEquity, SharesOutstanding))
	m.fill(MarketCap, product(CurrentPrice, SharesOutstanding))
	m.fill(PERatio, positiveRatio(CurrentPrice, EPS))
	m.fill(PBRatio, positiveRatio(CurrentPrice, BookValuePerShare))
	m.fill(PSRatio, alt{
		needs: []string{CurrentPrice, Revenue, SharesOutstanding},
		ok:    func(v []float64) bool { return v[1] != 0 && v[2] != 0 },
		calc:  func(v []float64) float64 { return v[0] / (v[1] / v[2]) },
	})

	// Coverage. Interest expense often arrives negative.
	m.fill(InterestCoverage, alt{
		needs: []string{EBIT, InterestExpense},
		ok:    func(v []float64) bool { return v[1] != 0 },
		calc:  func(v []float64) float64 { return v[0] / math.Abs(v[1]) },
	})

	// EBITDA: reported value, then the EBIT shortcut, then bottom-up.
	m.fill(EBITDA,
		sum(EBIT, Depreciation),
		sum(NetIncome, TaxExpense, InterestExpense, Depreciation),
	)

	// Enterprise value.
	m.fill(EnterpriseValue, alt{
		needs: []string{MarketCap, TotalDebt, Cash},
		calc:  func(v []float64) float64 { return v[0] + v[1] - v[2] },
	})
	m.fill(EVToEBITDA, positiveRatio(EnterpriseValue, EBITDA))

	return m
}

// canonicalizeRatios converts pre-multiplied percentages to raw fractions.
// A margin of 18.2 is a percentage; a margin of 0.182 already is the
// canonical fraction.
func canonicalizeRatios(m Metrics) {
	for _, name := range ratioClass {
		v, ok := m.Get(name)
		if !ok {
			continue
		}
		if math.Abs(v) >= 1 {
			m.Set(name, v/100)
		}
	}
}

// rescaleShares divides an implausibly large share count by 1000, the
// usual raw-count-versus-thousands vendor mixup, before any per-share
// computation consumes it.
func rescaleShares(m Metrics) {
	v, ok := m.Get(SharesOutstanding)
	if !ok {
		return
	}
	if v > sharesImplausible {
		m.Set(SharesOutstanding, v/1000)
	}
}

// =============================================================================
// ORDERED-FALLBACK DERIVATION
// =============================================================================

// alt is one way to derive a metric: the inputs it needs, an optional
// guard beyond presence, and the formula.
type alt struct {
	needs []string
	ok    func(v []float64) bool
	calc  func(v []float64) float64
}

// fill assigns target from the first alternative whose inputs are all
// present and whose guard accepts them. An existing value is never
// overwritten.
func (m Metrics) fill(target string, alts ...alt) {
	if m.Has(target) {
		return
	}
	for _, a := range alts {
		vals := make([]float64, 0, len(a.needs))
		missing := false
		for _, name := range a.needs {
			v, ok := m.Get(name)
			if !ok {
				missing = true
				break
			}
			vals = append(vals, v)
		}
		if missing {
			continue
		}
		if a.ok != nil && !a.ok(vals) {
			continue
		}
		m.Set(target, a.calc(vals))
		return
	}
}

func ratio(num, den string) alt {
	return alt{
		needs: []string{num, den},
		ok:    func(v []float64) bool { return v[1] != 0 },
		calc:  func(v []float64) float64 { return v[0] / v[1] },
	}
}

// positiveRatio is a ratio whose denominator must be strictly positive,
// for multiples that lose meaning against a non-positive base.
func positiveRatio(num, den string) alt {
	return alt{
		needs: []string{num, den},
		ok:    func(v []float64) bool { return v[1] > 0 },
		calc:  func(v []float64) float64 { return v[0] / v[1] },
	}
}

func product(a, b string) alt {
	return alt{
		needs: []string{a, b},
		calc:  func(v []float64) float64 { return v[0] * v[1] },
	}
}

func diff(a, b string) alt {
	return alt{
		needs: []string{a, b},
		calc:  func(v []float64) float64 { return v[0] - v[1] },
	}
}

func sum(fields ...string) alt {
	return alt{
		needs: fields,
		calc: func(v []float64) float64 {
			total := 0.0
			for _, f := range v {
				total += f
			}
			return total
		},
	}
}

// copyOf aliases another metric's value.
func copyOf(source string) alt {
	return alt{
		needs: []string{source},
		calc:  func(v []float64) float64 { return v[0] },
	}
}
