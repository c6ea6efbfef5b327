package valuation

import (
	"math"
	"testing"

	"stockval/pkg/core/metrics"
)

func metricSet(vals map[string]float64) metrics.Metrics {
	m := make(metrics.Metrics, len(vals))
	for k, v := range vals {
		m.Set(k, v)
	}
	return m
}

func TestJustifiedPBParity(t *testing.T) {
	// revenue 1000, net income 150, equity 800, 100 shares.
	// roe = 150/800 = 0.1875, payout 0.4 so g = 0.1125.
	// roe exceeds the 12% cost of equity, so the multiple degrades to
	// 1.0x book. BVPS = 800/100 = 8 and the model prices the share at 8.
	m := metrics.Normalize(metricSet(map[string]float64{
		metrics.Revenue:           1000,
		metrics.NetIncome:         150,
		metrics.TotalEquity:       800,
		metrics.SharesOutstanding: 100,
	}))

	a := DefaultAssumptions()
	a.CostOfEquity = 0.12
	a.PayoutRatio = 0.4

	got := JustifiedPB(m, a)
	if math.Abs(got-8.0) > 0.0001 {
		t.Errorf("Expected P/B value 8.0, got %f", got)
	}
}

func TestJustifiedPBFormulaBand(t *testing.T) {
	// roe 0.10 sits between g = 0.06 and r = 0.12, so the multiple is
	// (0.10-0.06)/(0.12-0.06) = 2/3 of book. BVPS 9 prices at 6.
	m := metricSet(map[string]float64{
		metrics.ROE:               0.10,
		metrics.BookValuePerShare: 9,
	})

	a := DefaultAssumptions()
	a.CostOfEquity = 0.12
	a.PayoutRatio = 0.4

	got := JustifiedPB(m, a)
	if math.Abs(got-6.0) > 0.0001 {
		t.Errorf("Expected P/B value 6.0, got %f", got)
	}
}

func TestJustifiedPBFallsBackWithoutBook(t *testing.T) {
	m := metricSet(map[string]float64{metrics.ROE: 0.10})
	if got := JustifiedPB(m, DefaultAssumptions()); got != Unavailable {
		t.Errorf("Expected sentinel without book value, got %f", got)
	}
}

func TestJustifiedPE(t *testing.T) {
	// g = 0.15 * (1-0.5) = 0.075 < r = 0.10.
	// PE = 0.5 * 1.075 / 0.025 = 21.5, EPS 2 prices at 43.
	m := metricSet(map[string]float64{
		metrics.ROE: 0.15,
		metrics.EPS: 2,
	})

	a := DefaultAssumptions()
	a.CostOfEquity = 0.10
	a.PayoutRatio = 0.5

	got := JustifiedPE(m, a)
	if math.Abs(got-43.0) > 0.0001 {
		t.Errorf("Expected P/E value 43.0, got %f", got)
	}
}

func TestJustifiedPEFallbackMultiple(t *testing.T) {
	// r = 0.08 while g = 0.15*0.6 = 0.09: growth outruns the discount
	// rate, so the model must use the conservative 15x multiple, never a
	// negative one.
	m := metricSet(map[string]float64{
		metrics.ROE: 0.15,
		metrics.EPS: 2,
	})

	a := DefaultAssumptions()
	a.CostOfEquity = 0.08
	a.PayoutRatio = 0.4

	got := JustifiedPE(m, a)
	if math.Abs(got-30.0) > 0.0001 {
		t.Errorf("Expected fallback 15 x EPS = 30, got %f", got)
	}
	if got < 0 {
		t.Error("Fallback must never be negative")
	}
}

func TestJustifiedPETargetROEFallback(t *testing.T) {
	// No statement ROE: the scenario's target ROE drives g.
	m := metricSet(map[string]float64{metrics.EPS: 2})

	a := DefaultAssumptions() // target roe 0.15, payout 0.4, r 0.12
	g := 0.15 * 0.6
	wantPE := 0.4 * (1 + g) / (0.12 - g)

	got := JustifiedPE(m, a)
	if math.Abs(got-wantPE*2) > 0.0001 {
		t.Errorf("Expected %f, got %f", wantPE*2, got)
	}
}

func TestFCFEProjection(t *testing.T) {
	// Base FCFE = 100 + 20 + 10 - 15 + (-25) = 90.
	// One forecast year at 10% growth: CF1 = 99.
	// r = 0.12, terminal g = 0.02:
	//   PV(CF1)  = 99 / 1.12                    = 88.392857
	//   TV       = 99 * 1.02 / 0.10             = 1009.8
	//   PV(TV)   = 1009.8 / 1.12                = 901.607143
	// Total 990.0 over 10 shares = 99.0 per share.
	m := metricSet(map[string]float64{
		metrics.NetIncome:         100,
		metrics.Depreciation:      20,
		metrics.NetBorrowing:      10,
		metrics.WorkingCapChange:  15,
		metrics.Capex:             -25,
		metrics.SharesOutstanding: 10,
	})

	a := DefaultAssumptions()
	a.ShortTermGrowth = 0.10
	a.TerminalGrowth = 0.02
	a.CostOfEquity = 0.12
	a.ForecastYears = 1

	got := FCFE(m, a)
	if math.Abs(got-99.0) > 0.0001 {
		t.Errorf("Expected FCFE value 99.0, got %f", got)
	}
}

func TestFCFEPrecondition(t *testing.T) {
	m := metricSet(map[string]float64{
		metrics.NetIncome:         100,
		metrics.SharesOutstanding: 10,
	})

	a := DefaultAssumptions()
	a.CostOfEquity = 0.02
	a.TerminalGrowth = 0.03

	if got := FCFE(m, a); got != Unavailable {
		t.Errorf("Expected sentinel when r <= terminal g, got %f", got)
	}
}

func TestFCFERequiresNetIncomeAndShares(t *testing.T) {
	a := DefaultAssumptions()

	m := metricSet(map[string]float64{metrics.SharesOutstanding: 10})
	if got := FCFE(m, a); got != Unavailable {
		t.Errorf("Expected sentinel without net income, got %f", got)
	}

	m = metricSet(map[string]float64{metrics.NetIncome: 100})
	if got := FCFE(m, a); got != Unavailable {
		t.Errorf("Expected sentinel without shares, got %f", got)
	}
}

func TestFCFFUsesAfterTaxInterest(t *testing.T) {
	// Base FCFF = 100 + 20 + |−10|*(1−0.20) − 0 + 0 = 128.
	// One year at 5%: CF1 = 134.4, r = wacc = 0.10, terminal g = 0.02:
	//   PV(CF1) = 134.4 / 1.10          = 122.181818
	//   TV      = 134.4 * 1.02 / 0.08   = 1713.6
	//   PV(TV)  = 1713.6 / 1.10         = 1557.818182
	// Total 1680.0 over 10 shares = 168.0.
	m := metricSet(map[string]float64{
		metrics.NetIncome:         100,
		metrics.Depreciation:      20,
		metrics.InterestExpense:   -10,
		metrics.SharesOutstanding: 10,
	})

	a := DefaultAssumptions()
	a.ShortTermGrowth = 0.05
	a.TerminalGrowth = 0.02
	a.WACC = 0.10
	a.TaxRate = 0.20
	a.ForecastYears = 1

	got := FCFF(m, a)
	if math.Abs(got-168.0) > 0.0001 {
		t.Errorf("Expected FCFF value 168.0, got %f", got)
	}
}

func TestRunAllProducesAllFourModels(t *testing.T) {
	m := metrics.Normalize(metricSet(map[string]float64{
		metrics.Revenue:           1000,
		metrics.NetIncome:         150,
		metrics.TotalAssets:       2000,
		metrics.TotalLiabilities:  1200,
		metrics.SharesOutstanding: 100,
		metrics.Depreciation:      40,
	}))

	res := RunAll(m, DefaultAssumptions())
	for _, name := range ModelNames {
		if _, ok := res.Models[name]; !ok {
			t.Errorf("Expected model %s in results", name)
		}
	}
	if res.Summary == nil {
		t.Fatal("Expected a summary for a fully valued stock")
	}
	if res.Summary.TotalModels != 4 {
		t.Errorf("Expected 4 total models, got %d", res.Summary.TotalModels)
	}
	if res.WeightedAverage <= 0 {
		t.Errorf("Expected positive weighted average, got %f", res.WeightedAverage)
	}
}
