// Package metrics derives the complete financial metric set the valuation
// models consume from whatever primitives statement resolution produced.
package metrics

// Canonical metric names. Resolution, derivation and serialization all key
// on these; vendor labels never leave the statement layer.
const (
	Revenue           = "revenue_ttm"
	NetIncome         = "net_income_ttm"
	GrossProfit       = "gross_profit"
	EBIT              = "ebit"
	EBITDA            = "ebitda"
	InterestExpense   = "interest_expense"
	TaxExpense        = "tax_expense"
	Depreciation      = "depreciation"
	NetBorrowing      = "net_borrowing"
	WorkingCapChange  = "working_capital_change"
	Capex             = "capex"
	OperatingCashFlow = "operating_cash_flow"
	TotalAssets       = "total_assets"
	TotalLiabilities  = "total_liabilities"
	TotalEquity       = "total_equity"
	TotalDebt         = "total_debt"
	CurrentAssets     = "current_assets"
	CurrentLiabs      = "current_liabilities"
	Inventory         = "inventory"
	Cash              = "cash"
	Receivables       = "accounts_receivable"
	FixedAssets       = "fixed_assets"
	SharesOutstanding = "shares_outstanding"
	CurrentPrice      = "current_price"
	DividendPerShare  = "dividend_per_share"

	GrossMargin       = "gross_margin"
	EBITMargin        = "ebit_margin"
	NetProfitMargin   = "net_profit_margin"
	ROA               = "roa"
	ROE               = "roe"
	AssetTurnover     = "asset_turnover"
	InventoryTurnover = "inventory_turnover"
	FixedAssetTurn    = "fixed_asset_turnover"
	ReceivablesTurn   = "receivables_turnover"
	CurrentRatio      = "current_ratio"
	QuickRatio        = "quick_ratio"
	CashRatio         = "cash_ratio"
	DebtToEquity      = "debt_to_equity"
	EquityMultiplier  = "equity_multiplier"
	FinancialLeverage = "financial_leverage"
	EPS               = "eps"
	BookValuePerShare = "book_value_per_share"
	MarketCap         = "market_cap"
	PERatio           = "pe_ratio"
	PBRatio           = "pb_ratio"
	PSRatio           = "ps_ratio"
	InterestCoverage  = "interest_coverage"
	EnterpriseValue   = "enterprise_value"
	EVToEBITDA        = "ev_to_ebitda"
)

// Metrics maps canonical metric names to nullable values. A nil (or
// absent) entry means the quantity could not be resolved, which is
// distinct from a true zero.
type Metrics map[string]*float64

// Get returns the value and whether it is present.
func (m Metrics) Get(name string) (float64, bool) {
	v, ok := m[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Has reports presence without exposing the value.
func (m Metrics) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Val returns the stored value or 0 when absent. Use Get when absence
// matters.
func (m Metrics) Val(name string) float64 {
	v, _ := m.Get(name)
	return v
}

// Set stores a value under the canonical name.
func (m Metrics) Set(name string, v float64) {
	m[name] = &v
}

// Clone copies the mapping with fresh value pointers.
func (m Metrics) Clone() Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}
