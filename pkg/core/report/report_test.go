package report

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"stockval/pkg/core/metrics"
	"stockval/pkg/core/valuation"
)

func buildTestInput() Input {
	m := metrics.Metrics{}
	m.Set(metrics.Revenue, 61000.0)
	m.Set(metrics.NetIncome, 9200.0)
	m.Set(metrics.TotalEquity, 35500.0)
	m.Set(metrics.EPS, 4400.0)
	m.Set(metrics.ROE, 0.26)

	price := 64300.0
	upside := 15.2
	return Input{
		Symbol:    "vnm",
		Name:      "Vinamilk",
		Exchange:  "HSX",
		Sector:    "Food Products",
		Quarterly: true,
		Metrics:   m,
		Assumptions: func() valuation.Assumptions {
			a := valuation.DefaultAssumptions()
			return a
		}(),
		Result: &valuation.Result{
			Models: map[string]float64{
				valuation.ModelFCFE:        74100.0,
				valuation.ModelFCFF:        valuation.Unavailable,
				valuation.ModelJustifiedPE: 70400.0,
				valuation.ModelJustifiedPB: 68900.0,
			},
			WeightedAverage: 71133.33,
			Summary: &valuation.Summary{
				Average:     71133.33,
				Min:         68900.0,
				Max:         74100.0,
				ModelsUsed:  3,
				TotalModels: 4,
			},
		},
		CurrentPrice:   &price,
		UpsidePercent:  &upside,
		Recommendation: "BUY",
	}
}

func TestBuildReport(t *testing.T) {
	rep := Build(buildTestInput())

	if _, err := uuid.Parse(rep.ID); err != nil {
		t.Errorf("Expected a uuid report id, got %q", rep.ID)
	}
	if rep.Symbol != "VNM" {
		t.Errorf("Expected symbol VNM, got %s", rep.Symbol)
	}

	md := rep.Markdown
	checks := []string{
		"# Valuation Report: VNM (Vinamilk)",
		"trailing four quarters",
		"## Assumptions",
		"FCFE (Free Cash Flow to Equity)",
		"74,100",
		"**Weighted fair value: 71,133.33 per share**",
		"3 of 4 models",
		"Current price: 64,300",
		"Upside: 15.2%",
		"**BUY**",
		"| Revenue | 61,000 |",
		"| ROE | 26.0% |",
	}
	for _, want := range checks {
		if !strings.Contains(md, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}
}

func TestBuildReportMarksUnavailableModels(t *testing.T) {
	rep := Build(buildTestInput())

	// FCFF produced no value, so its row shows n/a instead of 0.
	for _, line := range strings.Split(rep.Markdown, "\n") {
		if strings.Contains(line, "FCFF") && !strings.Contains(line, "n/a") {
			t.Errorf("Expected the FCFF row to read n/a, got %q", line)
		}
	}
}

func TestBuildReportWithoutMarketData(t *testing.T) {
	in := buildTestInput()
	in.CurrentPrice = nil
	rep := Build(in)

	if strings.Contains(rep.Markdown, "## Market Comparison") {
		t.Error("Expected no market section without a current price")
	}
}

func TestNumFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{99000, "99,000"},
		{1234567.5, "1,234,567.50"},
		{-4500.25, "-4,500.25"},
		{950, "950"},
		{0, "0"},
		{64300.1, "64,300.10"},
	}
	for _, c := range cases {
		if got := num(c.in); got != c.want {
			t.Errorf("num(%v): expected %s, got %s", c.in, c.want, got)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(0)
	rep := Build(buildTestInput())
	reg.Put(rep)

	if got := reg.Get(rep.ID); got == nil || got.Symbol != "VNM" {
		t.Fatalf("Expected to retrieve the stored report, got %+v", got)
	}
	if reg.Get("missing-id") != nil {
		t.Error("Expected nil for an unknown id")
	}

	ids := reg.IDs()
	if len(ids) != 1 || ids[0] != rep.ID {
		t.Errorf("Expected exactly the stored id, got %v", ids)
	}
}
