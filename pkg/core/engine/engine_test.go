package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"stockval/pkg/core/config"
	"stockval/pkg/core/statement"
	"stockval/pkg/core/symbols"
)

type fakeSource struct {
	bundle  *statement.Bundle
	err     error
	price   *float64
	fetches int
}

func (f *fakeSource) FetchBundle(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

func (f *fakeSource) CurrentPrice(ctx context.Context, symbol string, board *statement.Table) *float64 {
	return f.price
}

type fakeStore struct {
	bundle    *statement.Bundle
	fetchedAt time.Time
	saved     int
}

func (f *fakeStore) Get(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, time.Time) {
	return f.bundle, f.fetchedAt
}

func (f *fakeStore) Save(ctx context.Context, bundle *statement.Bundle) error {
	f.saved++
	f.bundle = bundle
	f.fetchedAt = time.Now()
	return nil
}

var (
	_ StatementSource = (*fakeSource)(nil)
	_ BundleStore     = (*fakeStore)(nil)
)

// testBundle carries four quarters of income, a balance position, two
// quarters of ratios and a price board share count.
func testBundle() *statement.Bundle {
	income := &statement.Table{Columns: []statement.Key{
		{Label: "Net Profit For the Year"},
		{Label: "Revenue (Bn. VND)"},
	}}
	income.AddRow("2024-Q2", 30.0, 250.0)
	income.AddRow("2024-Q1", 25.0, 240.0)
	income.AddRow("2023-Q4", 25.0, 260.0)
	income.AddRow("2023-Q3", 20.0, 250.0)
	income.AddRow("2023-Q2", 22.0, 230.0)
	income.AddRow("2023-Q1", 24.0, 235.0)
	income.AddRow("2022-Q4", 26.0, 245.0)
	income.AddRow("2022-Q3", 23.0, 240.0)

	balance := &statement.Table{Columns: []statement.Key{
		{Label: "TỔNG CỘNG TÀI SẢN"},
		{Label: "TỔNG CỘNG NỢ PHẢI TRẢ"},
		{Label: "VỐN CHỦ SỞ HỮU"},
	}}
	balance.AddRow("2024-Q2", 2000.0, 1200.0, 800.0)

	ratios := &statement.Table{Columns: []statement.Key{
		{Category: config.CatProfitability, Label: "ROE (%)"},
		{Category: config.CatProfitability, Label: "ROA (%)"},
		{Category: config.CatLiquidity, Label: "Current Ratio"},
		{Category: config.CatLiquidity, Label: "Quick Ratio"},
		{Category: config.CatLiquidity, Label: "Cash Ratio"},
	}}
	ratios.AddRow("2024-Q2", 0.125, 0.05, 1.8, 1.2, 0.6)
	ratios.AddRow("2024-Q1", 0.11, 0.045, 1.7, 1.1, 0.5)

	board := &statement.Table{Columns: []statement.Key{
		{Category: "listing", Label: "listed_share"},
		{Category: "match", Label: "match_price"},
	}}
	board.AddRow("", 10.0, 50.0)

	return &statement.Bundle{
		Symbol:     "VNM",
		Quarterly:  true,
		Income:     income,
		Balance:    balance,
		Ratios:     ratios,
		PriceBoard: board,
	}
}

func testEngine(source *fakeSource, store *fakeStore) *Engine {
	listing := symbols.NewListing([]symbols.Company{
		{Symbol: "VNM", Name: "Vinamilk", Exchange: "HSX", Sector: "Food Products"},
	})
	sectors := map[string]string{"VNM": "Food Products"}
	return New(config.Default(), source, store, listing, sectors)
}

func TestStockDataPayload(t *testing.T) {
	price := 50.0
	source := &fakeSource{bundle: testBundle(), price: &price}
	e := testEngine(source, &fakeStore{})

	data, err := e.StockData(context.Background(), "vnm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Symbol != "VNM" || data.Name != "Vinamilk" {
		t.Errorf("Expected VNM/Vinamilk, got %s/%s", data.Symbol, data.Name)
	}
	if data.Sector != "Food Products" {
		t.Errorf("Expected sector Food Products, got %s", data.Sector)
	}
	if data.CurrentPrice == nil || *data.CurrentPrice != 50.0 {
		t.Errorf("Expected current price 50, got %v", data.CurrentPrice)
	}
	if data.SharesOutstanding == nil || *data.SharesOutstanding != 10.0 {
		t.Errorf("Expected 10 shares, got %v", data.SharesOutstanding)
	}

	// Trailing four quarters: 30+25+25+20 income, 250+240+260+250 revenue.
	if got := data.Metrics["net_income_ttm"]; got != 100.0 {
		t.Errorf("Expected net income 100, got %f", got)
	}
	if got := data.Metrics["revenue_ttm"]; got != 1000.0 {
		t.Errorf("Expected revenue 1000, got %f", got)
	}
	// Ratio-class metrics serve as percent.
	if got := data.Metrics["roe"]; math.Abs(got-12.5) > 0.0001 {
		t.Errorf("Expected ROE 12.5 percent, got %f", got)
	}
	// Trailing windows: 1000 over 950 is 5.26% growth.
	if got := data.Metrics["revenue_growth_yoy"]; math.Abs(got-5.2632) > 0.001 {
		t.Errorf("Expected 5.26%% revenue growth, got %f", got)
	}
	if !data.Quality.HasRealPrice || !data.Quality.HasFinancials {
		t.Errorf("Expected quality flags set, got %+v", data.Quality)
	}
}

func TestStockDataHistoryAscending(t *testing.T) {
	source := &fakeSource{bundle: testBundle()}
	e := testEngine(source, &fakeStore{})

	data, err := e.StockData(context.Background(), "VNM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := data.History
	if h == nil {
		t.Fatal("Expected a history series on quarterly data")
	}
	wantPeriods := []string{"2024-Q1", "2024-Q2"}
	if len(h.Periods) != 2 || h.Periods[0] != wantPeriods[0] || h.Periods[1] != wantPeriods[1] {
		t.Errorf("Expected ascending periods %v, got %v", wantPeriods, h.Periods)
	}
	if math.Abs(h.ROE[0]-11.0) > 0.0001 || math.Abs(h.ROE[1]-12.5) > 0.0001 {
		t.Errorf("Expected ROE series [11.0 12.5], got %v", h.ROE)
	}
	if h.CurrentRatio[1] != 1.8 {
		t.Errorf("Expected latest current ratio 1.8, got %f", h.CurrentRatio[1])
	}
}

func TestStockDataUnknownSymbol(t *testing.T) {
	e := testEngine(&fakeSource{bundle: testBundle()}, &fakeStore{})

	_, err := e.StockData(context.Background(), "XYZ")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("Expected ErrUnknownSymbol, got %v", err)
	}
}

func TestValuateDefaults(t *testing.T) {
	price := 50.0
	source := &fakeSource{bundle: testBundle(), price: &price}
	e := testEngine(source, &fakeStore{})

	resp, err := e.Valuate(context.Background(), ValuationRequest{Symbol: "VNM"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Error("Expected a successful response")
	}

	// roe 0.125, g = 0.125*0.6 = 0.075:
	// roe exceeds the 0.12 required return, so P/B caps at 1.0x book = 80
	// justified P/E = 0.4*1.075/0.045 * eps 10 = 95.5556
	if got := resp.Valuations["justified_pb"]; math.Abs(got-80.0) > 0.0001 {
		t.Errorf("Expected justified P/B at book 80, got %f", got)
	}
	if got := resp.Valuations["justified_pe"]; math.Abs(got-95.555556) > 0.0001 {
		t.Errorf("Expected justified P/E 95.5556, got %f", got)
	}
	for _, model := range []string{"fcfe", "fcff"} {
		if resp.Valuations[model] <= 0 {
			t.Errorf("Expected a positive %s value, got %f", model, resp.Valuations[model])
		}
	}
	if resp.Valuations["weighted_average"] <= 0 {
		t.Error("Expected a positive weighted average")
	}
	if resp.Summary == nil || resp.Summary.ModelsUsed != 4 {
		t.Errorf("Expected all four models used, got %+v", resp.Summary)
	}

	if resp.FinancialData.EPS != 10.0 || resp.FinancialData.BVPS != 80.0 {
		t.Errorf("Expected EPS 10 and BVPS 80, got %+v", resp.FinancialData)
	}

	mc := resp.MarketComparison
	if mc == nil {
		t.Fatal("Expected a market comparison with a live price")
	}
	if mc.CurrentPrice != 50.0 {
		t.Errorf("Expected current price 50, got %f", mc.CurrentPrice)
	}
	if mc.Recommendation != "BUY" {
		t.Errorf("Expected BUY at this upside, got %s", mc.Recommendation)
	}

	if resp.ReportID == "" {
		t.Fatal("Expected a report id")
	}
	rep := e.Report(context.Background(), resp.ReportID)
	if rep == nil || rep.Symbol != "VNM" {
		t.Errorf("Expected the report to be retrievable, got %+v", rep)
	}
}

func TestValuateRequestOverrides(t *testing.T) {
	source := &fakeSource{bundle: testBundle()}
	e := testEngine(source, &fakeStore{})

	weights := map[string]float64{"justified_pb": 100}
	resp, err := e.Valuate(context.Background(), ValuationRequest{Symbol: "VNM", ModelWeights: weights})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := resp.Valuations["justified_pb"]
	if got := resp.Valuations["weighted_average"]; math.Abs(got-want) > 0.0001 {
		t.Errorf("Expected the single weighted model to set the average, got %f want %f", got, want)
	}
	if resp.Summary.ModelsUsed != 1 {
		t.Errorf("Expected 1 model used, got %d", resp.Summary.ModelsUsed)
	}
}

func TestValuatePercentConversion(t *testing.T) {
	source := &fakeSource{bundle: testBundle()}
	e := testEngine(source, &fakeStore{})

	rr := 10.0
	resp, err := e.Valuate(context.Background(), ValuationRequest{Symbol: "VNM", RequiredReturn: &rr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.AssumptionsUsed.CostOfEquity; math.Abs(got-0.10) > 0.0001 {
		t.Errorf("Expected requiredReturn 10 to become 0.10, got %f", got)
	}
	// Other fields stay at configured defaults.
	if got := resp.AssumptionsUsed.WACC; math.Abs(got-0.10) > 0.0001 {
		t.Errorf("Expected default WACC 0.10, got %f", got)
	}
}

func TestValuateInsufficientData(t *testing.T) {
	bundle := testBundle()
	bundle.PriceBoard = nil // drops the share count
	source := &fakeSource{bundle: bundle}
	e := testEngine(source, &fakeStore{})

	_, err := e.Valuate(context.Background(), ValuationRequest{Symbol: "VNM"})
	if err == nil {
		t.Fatal("Expected an error without a share count")
	}
}

func TestBundleServedFromFreshCache(t *testing.T) {
	source := &fakeSource{bundle: testBundle()}
	store := &fakeStore{bundle: testBundle(), fetchedAt: time.Now()}
	e := testEngine(source, store)

	if _, err := e.StockData(context.Background(), "VNM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.fetches != 0 {
		t.Errorf("Expected no vendor fetch on a fresh cache, got %d", source.fetches)
	}
}

func TestBundleStaleFallbackOnFetchFailure(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("vendor down")}
	store := &fakeStore{bundle: testBundle(), fetchedAt: time.Now().Add(-24 * time.Hour)}
	e := testEngine(source, store)

	data, err := e.StockData(context.Background(), "VNM")
	if err != nil {
		t.Fatalf("Expected the stale bundle to serve, got error: %v", err)
	}
	if data.Metrics["net_income_ttm"] != 100.0 {
		t.Errorf("Expected stale data to resolve, got %v", data.Metrics["net_income_ttm"])
	}
	if source.fetches != 1 {
		t.Errorf("Expected one refresh attempt, got %d", source.fetches)
	}
}

func TestBundleErrorWithoutAnyData(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("vendor down")}
	e := testEngine(source, &fakeStore{})

	if _, err := e.StockData(context.Background(), "VNM"); err == nil {
		t.Fatal("Expected an error with no cache and no vendor")
	}
}

func TestValuateRefreshesStaleCache(t *testing.T) {
	source := &fakeSource{bundle: testBundle()}
	store := &fakeStore{bundle: testBundle(), fetchedAt: time.Now().Add(-2 * time.Hour)}
	e := testEngine(source, store)

	if _, err := e.Valuate(context.Background(), ValuationRequest{Symbol: "VNM"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.fetches != 1 {
		t.Errorf("Expected a refresh of the stale bundle, got %d fetches", source.fetches)
	}
	if store.saved != 1 {
		t.Errorf("Expected the fresh bundle to be cached, got %d saves", store.saved)
	}
}
