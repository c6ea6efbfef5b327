package metrics

import (
	"math"
	"testing"
)

func build(vals map[string]float64) Metrics {
	m := make(Metrics, len(vals))
	for k, v := range vals {
		m.Set(k, v)
	}
	return m
}

func expect(t *testing.T, m Metrics, name string, want float64) {
	t.Helper()
	got, ok := m.Get(name)
	if !ok {
		t.Errorf("Expected %s=%f, got absent", name, want)
		return
	}
	if math.Abs(got-want) > 0.0001 {
		t.Errorf("Expected %s=%f, got %f", name, want, got)
	}
}

func expectAbsent(t *testing.T, m Metrics, name string) {
	t.Helper()
	if got, ok := m.Get(name); ok {
		t.Errorf("Expected %s absent, got %f", name, got)
	}
}

func TestNormalizeDerivesRatios(t *testing.T) {
	m := Normalize(build(map[string]float64{
		Revenue:           1000,
		GrossProfit:       400,
		EBIT:              250,
		NetIncome:         150,
		TotalAssets:       2000,
		TotalLiabilities:  1200,
		CurrentAssets:     900,
		CurrentLiabs:      450,
		Inventory:         300,
		Cash:              180,
		SharesOutstanding: 100,
		CurrentPrice:      24,
	}))

	// Margins as raw fractions.
	expect(t, m, GrossMargin, 0.4)
	expect(t, m, EBITMargin, 0.25)
	expect(t, m, NetProfitMargin, 0.15)

	// Equity = 2000 - 1200 = 800, then the chain built on it.
	expect(t, m, TotalEquity, 800)
	expect(t, m, ROE, 0.1875)
	expect(t, m, ROA, 0.075)
	expect(t, m, DebtToEquity, 1.5)
	expect(t, m, EquityMultiplier, 2.5)
	expect(t, m, FinancialLeverage, 2.5)

	// Liquidity.
	expect(t, m, CurrentRatio, 2.0)
	expect(t, m, QuickRatio, (900.0-300.0)/450.0)
	expect(t, m, CashRatio, 0.4)

	// Per-share: EPS = 1.5, BVPS = 8, market cap = 2400.
	expect(t, m, EPS, 1.5)
	expect(t, m, BookValuePerShare, 8)
	expect(t, m, MarketCap, 2400)
	expect(t, m, PERatio, 16)
	expect(t, m, PBRatio, 3)
	expect(t, m, PSRatio, 2.4)

	// EV = 2400 + 1200 - 180 = 3420.
	expect(t, m, EnterpriseValue, 3420)
}

func TestNormalizeNeverOverwrites(t *testing.T) {
	m := Normalize(build(map[string]float64{
		Revenue:     1000,
		GrossProfit: 400,
		GrossMargin: 0.55, // reported directly, formula would say 0.40
	}))
	expect(t, m, GrossMargin, 0.55)
}

func TestNormalizeCanonicalizesPercentages(t *testing.T) {
	m := Normalize(build(map[string]float64{
		ROE:             18.75,
		ROA:             7.5,
		NetProfitMargin: 0.15, // already a fraction, must pass unchanged
	}))
	expect(t, m, ROE, 0.1875)
	expect(t, m, ROA, 0.075)
	expect(t, m, NetProfitMargin, 0.15)
}

func TestNormalizeRescalesShares(t *testing.T) {
	m := Normalize(build(map[string]float64{
		NetIncome:         150e9,
		SharesOutstanding: 2.5e12, // raw count where thousands were expected
	}))
	expect(t, m, SharesOutstanding, 2.5e9)
	expect(t, m, EPS, 150e9/2.5e9)

	// A plausible count stays untouched.
	m = Normalize(build(map[string]float64{SharesOutstanding: 4.2e9}))
	expect(t, m, SharesOutstanding, 4.2e9)
}

func TestNormalizeEBITDATiers(t *testing.T) {
	// Reported EBITDA wins.
	m := Normalize(build(map[string]float64{
		EBITDA:       500,
		EBIT:         250,
		Depreciation: 100,
	}))
	expect(t, m, EBITDA, 500)

	// EBIT + depreciation.
	m = Normalize(build(map[string]float64{
		EBIT:         250,
		Depreciation: 100,
	}))
	expect(t, m, EBITDA, 350)

	// Bottom-up needs all four components.
	m = Normalize(build(map[string]float64{
		NetIncome:       150,
		TaxExpense:      40,
		InterestExpense: 30,
		Depreciation:    100,
	}))
	expect(t, m, EBITDA, 320)

	m = Normalize(build(map[string]float64{
		NetIncome:    150,
		Depreciation: 100,
	}))
	expectAbsent(t, m, EBITDA)
}

func TestNormalizeGuards(t *testing.T) {
	// Zero divisors leave the target absent.
	m := Normalize(build(map[string]float64{
		Revenue:   0,
		NetIncome: 150,
	}))
	expectAbsent(t, m, NetProfitMargin)

	// Negative EPS blocks the P/E multiple.
	m = Normalize(build(map[string]float64{
		NetIncome:         -50,
		SharesOutstanding: 100,
		CurrentPrice:      24,
	}))
	expect(t, m, EPS, -0.5)
	expectAbsent(t, m, PERatio)

	// EV/EBITDA requires positive EBITDA.
	m = Normalize(build(map[string]float64{
		MarketCap: 2400,
		TotalDebt: 1200,
		Cash:      180,
		EBITDA:    0,
	}))
	expect(t, m, EnterpriseValue, 3420)
	expectAbsent(t, m, EVToEBITDA)
}

func TestNormalizeInterestCoverage(t *testing.T) {
	// Interest expense reported as an outflow (negative).
	m := Normalize(build(map[string]float64{
		EBIT:            250,
		InterestExpense: -50,
	}))
	expect(t, m, InterestCoverage, 5)
}

func TestNormalizeIdempotent(t *testing.T) {
	base := build(map[string]float64{
		Revenue:           1000,
		GrossProfit:       400,
		NetIncome:         150,
		TotalAssets:       2000,
		TotalLiabilities:  1200,
		SharesOutstanding: 100,
		CurrentPrice:      24,
		ROE:               18.75,
	})

	once := Normalize(base)
	twice := Normalize(once)

	if len(once) != len(twice) {
		t.Fatalf("Expected stable metric count, got %d then %d", len(once), len(twice))
	}
	for name := range once {
		a, aok := once.Get(name)
		b, bok := twice.Get(name)
		if aok != bok || math.Abs(a-b) > 0.0001 {
			t.Errorf("Metric %s changed on re-normalization: %f -> %f", name, a, b)
		}
	}
}

func TestNormalizeLeavesInputAlone(t *testing.T) {
	in := build(map[string]float64{Revenue: 1000, NetIncome: 150})
	_ = Normalize(in)
	if len(in) != 2 {
		t.Errorf("Normalize must not mutate its input, got %d entries", len(in))
	}
}
