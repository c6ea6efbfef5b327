package engine

import (
	"stockval/pkg/core/metrics"
	"stockval/pkg/core/statement"
	"stockval/pkg/core/validate"
)

// historyWindow caps the chart series at five years of quarters.
const historyWindow = 20

// HistoricalSeries carries parallel per-quarter arrays for charting,
// oldest period first. Missing cells chart as zero.
type HistoricalSeries struct {
	Periods      []string  `json:"periods"`
	ROE          []float64 `json:"roe_data"`
	ROA          []float64 `json:"roa_data"`
	CurrentRatio []float64 `json:"current_ratio_data"`
	QuickRatio   []float64 `json:"quick_ratio_data"`
	CashRatio    []float64 `json:"cash_ratio_data"`
}

// history extracts the trailing quarterly ratio series from a bundle.
// Annual bundles have no quarterly resolution to chart.
func (e *Engine) history(bundle *statement.Bundle) *HistoricalSeries {
	table := bundle.Statement(statement.Ratios)
	if !bundle.Quarterly || table.Empty() {
		return nil
	}

	roe := e.candidatesFor(metrics.ROE, statement.Ratios)
	roa := e.candidatesFor(metrics.ROA, statement.Ratios)
	current := e.candidatesFor(metrics.CurrentRatio, statement.Ratios)
	quick := e.candidatesFor(metrics.QuickRatio, statement.Ratios)
	cash := e.candidatesFor(metrics.CashRatio, statement.Ratios)

	n := len(table.Rows)
	if n > historyWindow {
		n = historyWindow
	}

	series := &HistoricalSeries{}
	// Rows are most-recent-first; charts read oldest to newest.
	for i := n - 1; i >= 0; i-- {
		series.Periods = append(series.Periods, table.Rows[i].Period)
		series.ROE = append(series.ROE, valueAt(table, i, roe)*100)
		series.ROA = append(series.ROA, valueAt(table, i, roa)*100)
		series.CurrentRatio = append(series.CurrentRatio, valueAt(table, i, current))
		series.QuickRatio = append(series.QuickRatio, valueAt(table, i, quick))
		series.CashRatio = append(series.CashRatio, valueAt(table, i, cash))
	}
	return series
}

func valueAt(t *statement.Table, index int, candidates []statement.Key) float64 {
	if v := statement.RowValue(t, index, candidates); v != nil {
		return *v
	}
	return 0
}

// revenueGrowth compares the two most recent four-quarter revenue
// windows as a percent change. It needs eight clean quarters; anything
// less reports nothing rather than a misleading number.
func (e *Engine) revenueGrowth(bundle *statement.Bundle) *float64 {
	income := bundle.Statement(statement.Income)
	if !bundle.Quarterly || income.Empty() || len(income.Rows) < 8 {
		return nil
	}
	cands := e.candidatesFor(metrics.Revenue, statement.Income)

	var current, prior float64
	for i := 0; i < 4; i++ {
		v := statement.RowValue(income, i, cands)
		if v == nil {
			return nil
		}
		current += *v
	}
	for i := 4; i < 8; i++ {
		v := statement.RowValue(income, i, cands)
		if v == nil {
			return nil
		}
		prior += *v
	}
	if prior <= 0 {
		return nil
	}
	g := validate.CalculateYoY(current, prior)
	return &g
}
