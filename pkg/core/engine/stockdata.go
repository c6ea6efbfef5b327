package engine

import (
	"context"
	"math"

	"stockval/pkg/core/metrics"
	"stockval/pkg/core/symbols"
)

// StockData is the fundamentals payload for one symbol.
type StockData struct {
	Symbol            string             `json:"symbol"`
	Name              string             `json:"name"`
	Exchange          string             `json:"exchange"`
	Sector            string             `json:"sector"`
	IsQuarterly       bool               `json:"is_quarterly_data"`
	CurrentPrice      *float64           `json:"current_price"`
	SharesOutstanding *float64           `json:"shares_outstanding"`
	Metrics           map[string]float64 `json:"metrics"`
	History           *HistoricalSeries  `json:"history,omitempty"`
	Quality           DataQuality        `json:"data_quality"`
}

// DataQuality flags which parts of the payload rest on real data, so the
// frontend can grey out derived or missing figures.
type DataQuality struct {
	HasRealPrice  bool `json:"has_real_price"`
	HasFinancials bool `json:"has_financials"`
	PEReliable    bool `json:"pe_reliable"`
	PBReliable    bool `json:"pb_reliable"`
}

// Metrics the canonical set stores as raw fractions but the payload
// serves as percent.
var percentDisplay = map[string]bool{
	metrics.ROE:             true,
	metrics.ROA:             true,
	metrics.GrossMargin:     true,
	metrics.EBITMargin:      true,
	metrics.NetProfitMargin: true,
}

// StockData assembles the fundamentals for a symbol: identity from the
// listing, normalized metrics from the freshest bundle, the live price
// and the quarterly ratio history.
func (e *Engine) StockData(ctx context.Context, symbol string) (*StockData, error) {
	symbol, err := e.validate(symbol)
	if err != nil {
		return nil, err
	}

	bundle, err := e.bundle(ctx, symbol, true)
	if err != nil {
		return nil, err
	}
	m := e.resolveMetrics(ctx, symbol, bundle)

	data := &StockData{
		Symbol:      symbol,
		Name:        symbol,
		Exchange:    "HOSE",
		Sector:      symbols.SectorFor(e.sectors, symbol),
		IsQuarterly: bundle.Quarterly,
		Metrics:     displayMetrics(m),
	}
	if company := e.listing.Get(symbol); company != nil {
		if company.Name != "" {
			data.Name = company.Name
		}
		if company.Exchange != "" {
			data.Exchange = company.Exchange
		}
		if company.Sector != "" && company.Sector != "Unknown" {
			data.Sector = company.Sector
		}
	}

	if v, ok := m.Get(metrics.CurrentPrice); ok {
		data.CurrentPrice = &v
	}
	if v, ok := m.Get(metrics.SharesOutstanding); ok {
		data.SharesOutstanding = &v
	}
	if g := e.revenueGrowth(bundle); g != nil {
		data.Metrics["revenue_growth_yoy"] = *g
	}
	data.History = e.history(bundle)
	data.Quality = DataQuality{
		HasRealPrice:  m.Has(metrics.CurrentPrice),
		HasFinancials: m.Has(metrics.NetIncome),
		PEReliable:    m.Has(metrics.PERatio),
		PBReliable:    m.Has(metrics.PBRatio),
	}
	return data, nil
}

// displayMetrics copies present metrics into a plain map, scaling
// percent-convention values and dropping anything non-finite so the
// payload never serializes NaN or Inf.
func displayMetrics(m metrics.Metrics) map[string]float64 {
	out := make(map[string]float64, len(m))
	for name := range m {
		v, ok := m.Get(name)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if percentDisplay[name] {
			v = math.Round(v*100*100) / 100
		}
		out[name] = v
	}
	return out
}
