package provider

import (
	"stockval/pkg/core/config"
	"stockval/pkg/core/statement"
)

// ratioHeads maps the vendor's ratio spellings onto categorized heads.
// Current payloads already carry the display labels; older payloads used
// bare keys like "roe" and "de", so both forms are mapped.
var ratioHeads = map[string]statement.Key{
	"EPS (VND)":                {Category: config.CatValuation, Label: "EPS (VND)"},
	"BVPS (VND)":               {Category: config.CatValuation, Label: "BVPS (VND)"},
	"Market Capital (Bn. VND)": {Category: config.CatValuation, Label: "Market Capital (Bn. VND)"},
	"EV/EBITDA":                {Category: config.CatValuation, Label: "EV/EBITDA"},
	"P/E":                      {Category: config.CatValuation, Label: "P/E"},
	"P/B":                      {Category: config.CatValuation, Label: "P/B"},
	"P/S":                      {Category: config.CatValuation, Label: "P/S"},

	"EBITDA (Bn. VND)":        {Category: config.CatProfitability, Label: "EBITDA (Bn. VND)"},
	"ROE (%)":                 {Category: config.CatProfitability, Label: "ROE (%)"},
	"ROA (%)":                 {Category: config.CatProfitability, Label: "ROA (%)"},
	"EBIT Margin (%)":         {Category: config.CatProfitability, Label: "EBIT Margin (%)"},
	"Gross Profit Margin (%)": {Category: config.CatProfitability, Label: "Gross Profit Margin (%)"},
	"Net Profit Margin (%)":   {Category: config.CatProfitability, Label: "Net Profit Margin (%)"},

	"Debt/Equity":        {Category: config.CatCapital, Label: "Debt/Equity"},
	"Financial Leverage": {Category: config.CatCapital, Label: "Financial Leverage"},

	"Asset Turnover":       {Category: config.CatEfficiency, Label: "Asset Turnover"},
	"Inventory Turnover":   {Category: config.CatEfficiency, Label: "Inventory Turnover"},
	"Fixed Asset Turnover": {Category: config.CatEfficiency, Label: "Fixed Asset Turnover"},

	"Current Ratio":     {Category: config.CatLiquidity, Label: "Current Ratio"},
	"Quick Ratio":       {Category: config.CatLiquidity, Label: "Quick Ratio"},
	"Cash Ratio":        {Category: config.CatLiquidity, Label: "Cash Ratio"},
	"Interest Coverage": {Category: config.CatLiquidity, Label: "Interest Coverage"},

	// Bare keys from the legacy ratio feed.
	"eps":               {Category: config.CatValuation, Label: "EPS (VND)"},
	"bvps":              {Category: config.CatValuation, Label: "BVPS (VND)"},
	"pe":                {Category: config.CatValuation, Label: "P/E"},
	"pb":                {Category: config.CatValuation, Label: "P/B"},
	"ps":                {Category: config.CatValuation, Label: "P/S"},
	"roe":               {Category: config.CatProfitability, Label: "ROE (%)"},
	"roa":               {Category: config.CatProfitability, Label: "ROA (%)"},
	"de":                {Category: config.CatCapital, Label: "Debt/Equity"},
	"ae":                {Category: config.CatCapital, Label: "Financial Leverage"},
	"current_ratio":     {Category: config.CatLiquidity, Label: "Current Ratio"},
	"quick_ratio":       {Category: config.CatLiquidity, Label: "Quick Ratio"},
	"cash_ratio":        {Category: config.CatLiquidity, Label: "Cash Ratio"},
	"interest_coverage": {Category: config.CatLiquidity, Label: "Interest Coverage"},
}

// categorizeRatios rewrites flat ratio columns to their categorized heads
// so the resolver's category-scoped candidates find them. Columns already
// carrying a category and labels outside the known set stay as they are.
func categorizeRatios(t *statement.Table) {
	if t == nil {
		return
	}
	for i, col := range t.Columns {
		if col.Category != "" {
			continue
		}
		if head, ok := ratioHeads[col.Label]; ok {
			t.Columns[i] = head
		}
	}
}
