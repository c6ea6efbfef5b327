package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"stockval/pkg/core/metrics"
	"stockval/pkg/core/report"
	"stockval/pkg/core/symbols"
	"stockval/pkg/core/valuation"
)

// ValuationRequest is the POST body. Rate fields arrive as percent
// numbers the way the valuation form submits them (5 means 5%); nil
// leaves the configured default in place.
type ValuationRequest struct {
	Symbol          string             `json:"symbol"`
	RevenueGrowth   *float64           `json:"revenueGrowth"`
	TerminalGrowth  *float64           `json:"terminalGrowth"`
	WACC            *float64           `json:"wacc"`
	RequiredReturn  *float64           `json:"requiredReturn"`
	TaxRate         *float64           `json:"taxRate"`
	ProjectionYears *int               `json:"projectionYears"`
	ROE             *float64           `json:"roe"`
	PayoutRatio     *float64           `json:"payoutRatio"`
	ModelWeights    map[string]float64 `json:"modelWeights"`
}

// Assumptions folds the request over the configured defaults, converting
// percent numbers to fractions.
func (r *ValuationRequest) Assumptions(defaults valuation.Assumptions) valuation.Assumptions {
	a := defaults
	if r.RevenueGrowth != nil {
		a.ShortTermGrowth = *r.RevenueGrowth / 100
	}
	if r.TerminalGrowth != nil {
		a.TerminalGrowth = *r.TerminalGrowth / 100
	}
	if r.WACC != nil {
		a.WACC = *r.WACC / 100
	}
	if r.RequiredReturn != nil {
		a.CostOfEquity = *r.RequiredReturn / 100
	}
	if r.TaxRate != nil {
		a.TaxRate = *r.TaxRate / 100
	}
	if r.ProjectionYears != nil {
		a.ForecastYears = *r.ProjectionYears
	}
	if r.ROE != nil {
		a.TargetROE = *r.ROE / 100
	}
	if r.PayoutRatio != nil {
		a.PayoutRatio = *r.PayoutRatio / 100
	}
	if len(r.ModelWeights) > 0 {
		weights := make(map[string]float64, len(r.ModelWeights))
		for model, w := range r.ModelWeights {
			weights[model] = w / 100
		}
		a.ModelWeights = weights
	}
	return a
}

// MarketComparison relates the weighted fair value to the live price.
type MarketComparison struct {
	CurrentPrice      float64 `json:"current_price"`
	AverageValuation  float64 `json:"average_valuation"`
	UpsideDownsidePct float64 `json:"upside_downside_pct"`
	Recommendation    string  `json:"recommendation"`
}

// FinancialData is the compact fundamentals block echoed with a
// valuation, zero-filled where the statements were silent.
type FinancialData struct {
	EPS               float64 `json:"eps"`
	BVPS              float64 `json:"bvps"`
	NetIncome         float64 `json:"net_income"`
	Equity            float64 `json:"equity"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// ValuationResponse is the POST /api/valuation payload.
type ValuationResponse struct {
	Symbol           string                `json:"symbol"`
	Valuations       map[string]float64    `json:"valuations"`
	FinancialData    FinancialData         `json:"financial_data"`
	Summary          *valuation.Summary    `json:"summary,omitempty"`
	AssumptionsUsed  valuation.Assumptions `json:"assumptions_used"`
	MarketComparison *MarketComparison     `json:"market_comparison,omitempty"`
	ReportID         string                `json:"report_id,omitempty"`
	Success          bool                  `json:"success"`
	Timestamp        string                `json:"timestamp"`
}

// Valuate runs the four models for a symbol under the requested scenario
// and registers a report for the result.
func (e *Engine) Valuate(ctx context.Context, req ValuationRequest) (*ValuationResponse, error) {
	symbol, err := e.validate(req.Symbol)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[VALUATION] Calculating valuation for %s\n", symbol)

	bundle, err := e.bundle(ctx, symbol, true)
	if err != nil {
		return nil, err
	}
	m := e.resolveMetrics(ctx, symbol, bundle)

	// A valuation needs a share count and at least one income figure;
	// anything less produces four sentinels and an empty report.
	hasIncome := m.Has(metrics.NetIncome) || m.Has(metrics.EPS) || m.Has(metrics.Revenue)
	if !m.Has(metrics.SharesOutstanding) || !hasIncome {
		return nil, fmt.Errorf("insufficient statement data to value %s", symbol)
	}

	assumptions := req.Assumptions(e.cfg.Defaults)
	result := valuation.RunAll(m, assumptions)

	valuations := make(map[string]float64, len(result.Models)+1)
	for model, v := range result.Models {
		valuations[model] = sanitize(v)
	}
	valuations["weighted_average"] = sanitize(result.WeightedAverage)

	resp := &ValuationResponse{
		Symbol:          symbol,
		Valuations:      valuations,
		FinancialData:   financialData(m),
		Summary:         result.Summary,
		AssumptionsUsed: assumptions,
		Success:         true,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	price := e.marketComparison(resp, m)
	e.registerReport(ctx, resp, m, assumptions, result, bundle.Quarterly, price)

	fmt.Printf("[VALUATION] Completed for %s: weighted average %.2f\n", symbol, resp.Valuations["weighted_average"])
	return resp, nil
}

// marketComparison fills the market block when both a price and a
// positive fair value exist, and returns the price for reuse.
func (e *Engine) marketComparison(resp *ValuationResponse, m metrics.Metrics) *float64 {
	price, ok := m.Get(metrics.CurrentPrice)
	if !ok {
		return nil
	}
	avg := resp.Valuations["weighted_average"]
	if avg > 0 && price > 0 {
		upside := (avg - price) / price * 100
		resp.MarketComparison = &MarketComparison{
			CurrentPrice:      price,
			AverageValuation:  avg,
			UpsideDownsidePct: upside,
			Recommendation:    recommend(upside),
		}
	}
	return &price
}

// recommend maps upside to an action call. More than 10% upside is a
// buy; anything above -10% holds; deeper downside sells.
func recommend(upsidePct float64) string {
	switch {
	case upsidePct > 10:
		return "BUY"
	case upsidePct > -10:
		return "HOLD"
	default:
		return "SELL"
	}
}

func (e *Engine) registerReport(ctx context.Context, resp *ValuationResponse, m metrics.Metrics, a valuation.Assumptions, result *valuation.Result, quarterly bool, price *float64) {
	in := report.Input{
		Symbol:       resp.Symbol,
		Sector:       symbols.SectorFor(e.sectors, resp.Symbol),
		Quarterly:    quarterly,
		Metrics:      m,
		Assumptions:  a,
		Result:       result,
		CurrentPrice: price,
	}
	if company := e.listing.Get(resp.Symbol); company != nil {
		in.Name = company.Name
		in.Exchange = company.Exchange
		if company.Sector != "" && company.Sector != "Unknown" {
			in.Sector = company.Sector
		}
	}
	if mc := resp.MarketComparison; mc != nil {
		in.UpsidePercent = &mc.UpsideDownsidePct
		in.Recommendation = mc.Recommendation
	}

	rep := report.Build(in)
	e.reports.Put(rep)
	resp.ReportID = rep.ID

	if e.sink != nil {
		if err := e.sink.Save(ctx, rep); err != nil {
			fmt.Printf("[WARNING] Failed to persist report %s: %v\n", rep.ID, err)
		}
	}
}

func financialData(m metrics.Metrics) FinancialData {
	return FinancialData{
		EPS:               m.Val(metrics.EPS),
		BVPS:              m.Val(metrics.BookValuePerShare),
		NetIncome:         m.Val(metrics.NetIncome),
		Equity:            m.Val(metrics.TotalEquity),
		SharesOutstanding: m.Val(metrics.SharesOutstanding),
	}
}

// sanitize drops non-finite values to the sentinel so they never reach
// the JSON encoder.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return valuation.Unavailable
	}
	return v
}
