package config

import (
	"fmt"
	"os"

	"stockval/pkg/core/metrics"
	"stockval/pkg/core/statement"
	"stockval/pkg/core/utils"
)

// =============================================================================
// FIELD RESOLUTION TABLE
// Maps canonical metrics to the vendor labels they hide under. Candidates
// are ordered most-authoritative first and cover both English and
// Vietnamese statement heads, since the vendor falls back to Vietnamese
// labels when no translation exists. Primary statements come before the
// ratio table so a ratio-table copy only fills gaps.
// =============================================================================

func flat(labels ...string) []statement.Key {
	keys := make([]statement.Key, len(labels))
	for i, l := range labels {
		keys[i] = statement.Key{Label: l}
	}
	return keys
}

func under(category string, labels ...string) []statement.Key {
	keys := make([]statement.Key, len(labels))
	for i, l := range labels {
		keys[i] = statement.Key{Category: category, Label: l}
	}
	return keys
}

// Ratio table categories as the vendor publishes them.
const (
	CatValuation     = "Chỉ tiêu định giá"
	CatProfitability = "Chỉ tiêu khả năng sinh lợi"
	CatLiquidity     = "Chỉ tiêu thanh khoản"
	CatEfficiency    = "Chỉ tiêu hiệu quả hoạt động"
	CatCapital       = "Chỉ tiêu cơ cấu nguồn vốn"
)

// DefaultFieldSpecs returns the built-in resolution table. Flow metrics
// sum the trailing four quarters; balance-sheet and ratio metrics take the
// latest period.
func DefaultFieldSpecs() []statement.FieldSpec {
	income := func(metric string, labels ...string) statement.FieldSpec {
		return statement.FieldSpec{Metric: metric, Statement: statement.Income, Mode: statement.TrailingSum, Candidates: flat(labels...)}
	}
	cashflow := func(metric string, labels ...string) statement.FieldSpec {
		return statement.FieldSpec{Metric: metric, Statement: statement.CashFlow, Mode: statement.TrailingSum, Candidates: flat(labels...)}
	}
	balance := func(metric string, labels ...string) statement.FieldSpec {
		return statement.FieldSpec{Metric: metric, Statement: statement.Balance, Mode: statement.Latest, Candidates: flat(labels...)}
	}
	ratio := func(metric, category string, labels ...string) statement.FieldSpec {
		return statement.FieldSpec{Metric: metric, Statement: statement.Ratios, Mode: statement.Latest, Candidates: under(category, labels...)}
	}

	return []statement.FieldSpec{
		// Income statement flows.
		income(metrics.NetIncome, "Net Profit For the Year", "Lợi nhuận sau thuế", "Net income", "net_income", "netIncome", "profit"),
		income(metrics.Revenue, "Revenue (Bn. VND)", "Doanh thu thuần", "Revenue", "revenue", "netRevenue", "totalRevenue"),
		income(metrics.EBIT, "Lợi nhuận từ hoạt động kinh doanh", "Operating income", "EBIT", "Operating profit", "operationProfit"),
		income(metrics.GrossProfit, "Lợi nhuận gộp", "Gross Profit", "gross_profit", "grossProfit"),
		income(metrics.EBITDA, "EBITDA", "ebitda"),
		income(metrics.InterestExpense, "Chi phí lãi vay", "Interest expense", "interest_expense", "interestExpense"),
		income(metrics.TaxExpense, "Chi phí thuế TNDN", "Business income tax", "Income tax expense", "tax_expense", "incomeTax"),

		// Cash flow statement flows.
		cashflow(metrics.Depreciation, "Depreciation and Amortisation", "Khấu hao tài sản cố định", "Depreciation", "depreciation", "depreciationAndAmortisation"),
		cashflow(metrics.OperatingCashFlow, "Lưu chuyển tiền thuần từ hoạt động kinh doanh", "Net cash inflows/outflows from operating activities", "Operating cash flow", "Cash from operations"),
		cashflow(metrics.Capex, "Chi để mua sắm tài sản cố định", "Purchase of fixed assets", "Capital expenditure", "Capex", "capex"),
		cashflow(metrics.NetBorrowing, "Tiền thu từ đi vay", "Proceeds from borrowings", "net_borrowing", "netBorrowing"),
		cashflow(metrics.WorkingCapChange, "Thay đổi vốn lưu động", "Changes in working capital", "working_capital_change", "workingCapitalChange"),

		// Balance sheet positions.
		balance(metrics.TotalAssets, "TỔNG CỘNG TÀI SẢN", "Total assets", "totalAsset", "totalAssets"),
		balance(metrics.TotalLiabilities, "TỔNG CỘNG NỢ PHẢI TRẢ", "Total liabilities", "totalLiabilities", "totalDebt"),
		balance(metrics.TotalEquity, "VỐN CHỦ SỞ HỮU", "Owner's equity", "equity", "totalEquity", "shareholdersEquity"),
		balance(metrics.Cash, "Tiền và tương đương tiền", "Cash and cash equivalents", "Cash", "cash", "cashAndEquivalents"),
		balance(metrics.CurrentAssets, "TÀI SẢN NGẮN HẠN", "Current assets", "currentAssets"),
		balance(metrics.CurrentLiabs, "Nợ ngắn hạn", "Current liabilities", "currentLiabilities"),
		balance(metrics.Inventory, "Hàng tồn kho", "Inventories", "Inventory", "inventory"),
		balance(metrics.Receivables, "Các khoản phải thu", "Accounts receivable", "receivables"),
		balance(metrics.FixedAssets, "Tài sản cố định", "Fixed assets", "fixedAssets"),

		// Listing attributes ride on the price board table.
		{Metric: metrics.SharesOutstanding, Statement: statement.PriceBoard, Mode: statement.Latest,
			Candidates: flat("listed_share", "issue_share", "outstanding_share", "sharesOutstanding", "totalShares")},

		// Ratio table, gap fillers for anything the statements lacked.
		ratio(metrics.EPS, CatValuation, "EPS (VND)"),
		ratio(metrics.BookValuePerShare, CatValuation, "BVPS (VND)"),
		ratio(metrics.MarketCap, CatValuation, "Market Capital (Bn. VND)"),
		ratio(metrics.EVToEBITDA, CatValuation, "EV/EBITDA"),
		ratio(metrics.PERatio, CatValuation, "P/E"),
		ratio(metrics.PBRatio, CatValuation, "P/B"),
		ratio(metrics.PSRatio, CatValuation, "P/S"),
		ratio(metrics.EBITDA, CatProfitability, "EBITDA (Bn. VND)"),
		ratio(metrics.ROE, CatProfitability, "ROE (%)"),
		ratio(metrics.ROA, CatProfitability, "ROA (%)"),
		ratio(metrics.EBITMargin, CatProfitability, "EBIT Margin (%)"),
		ratio(metrics.GrossMargin, CatProfitability, "Gross Profit Margin (%)"),
		ratio(metrics.NetProfitMargin, CatProfitability, "Net Profit Margin (%)"),
		ratio(metrics.DebtToEquity, CatCapital, "Debt/Equity"),
		ratio(metrics.FinancialLeverage, CatCapital, "Financial Leverage"),
		ratio(metrics.AssetTurnover, CatEfficiency, "Asset Turnover"),
		ratio(metrics.InventoryTurnover, CatEfficiency, "Inventory Turnover"),
		ratio(metrics.FixedAssetTurn, CatEfficiency, "Fixed Asset Turnover"),
		ratio(metrics.CurrentRatio, CatLiquidity, "Current Ratio"),
		ratio(metrics.QuickRatio, CatLiquidity, "Quick Ratio"),
		ratio(metrics.CashRatio, CatLiquidity, "Cash Ratio"),
		ratio(metrics.InterestCoverage, CatLiquidity, "Interest Coverage"),
	}
}

// FieldSpecs returns the resolution table with any hjson overrides from
// path layered on top. Overrides let an operator track a vendor label
// rename without a rebuild.
func FieldSpecs(path string) []statement.FieldSpec {
	specs := DefaultFieldSpecs()
	if path == "" {
		return specs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return specs
	}
	var overrides []statement.FieldSpec
	if err := utils.ParseHJSONToStruct(string(data), &overrides); err != nil {
		fmt.Printf("[CONFIG] Ignoring field overrides %s: %v\n", path, err)
		return specs
	}
	return MergeFieldSpecs(specs, overrides)
}

// MergeFieldSpecs replaces base specs that an override targets (same
// metric and statement) in place, preserving resolution order, and
// appends overrides for metrics the base table never mentions.
func MergeFieldSpecs(base, overrides []statement.FieldSpec) []statement.FieldSpec {
	merged := make([]statement.FieldSpec, len(base))
	copy(merged, base)

	for _, ov := range overrides {
		replaced := false
		for i, spec := range merged {
			if spec.Metric == ov.Metric && spec.Statement == ov.Statement {
				merged[i] = ov
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, ov)
		}
	}
	return merged
}
