// Package report builds shareable valuation reports. Reports are composed
// as markdown, registered under a uuid, and rendered to HTML on demand.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"stockval/pkg/core/metrics"
	"stockval/pkg/core/valuation"
)

// Report is one generated valuation report.
type Report struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
	Markdown  string    `json:"markdown"`
}

// Input carries everything the builder needs. Optional fields may stay
// zero; the corresponding sections are omitted.
type Input struct {
	Symbol         string
	Name           string
	Exchange       string
	Sector         string
	Quarterly      bool
	Metrics        metrics.Metrics
	Assumptions    valuation.Assumptions
	Result         *valuation.Result
	CurrentPrice   *float64
	UpsidePercent  *float64
	Recommendation string
}

var modelTitles = map[string]string{
	valuation.ModelFCFE:        "FCFE (Free Cash Flow to Equity)",
	valuation.ModelFCFF:        "FCFF (Free Cash Flow to Firm)",
	valuation.ModelJustifiedPE: "Justified P/E",
	valuation.ModelJustifiedPB: "Justified P/B",
}

// Build composes the markdown report and assigns it a fresh id.
func Build(in Input) *Report {
	var b strings.Builder

	title := strings.ToUpper(in.Symbol)
	if in.Name != "" && !strings.EqualFold(in.Name, in.Symbol) {
		title = fmt.Sprintf("%s (%s)", title, in.Name)
	}
	fmt.Fprintf(&b, "# Valuation Report: %s\n\n", title)

	period := "latest fiscal year"
	if in.Quarterly {
		period = "trailing four quarters"
	}
	fmt.Fprintf(&b, "Generated %s", time.Now().Format("2006-01-02 15:04"))
	if in.Exchange != "" {
		fmt.Fprintf(&b, " | Exchange: %s", in.Exchange)
	}
	if in.Sector != "" && in.Sector != "Unknown" {
		fmt.Fprintf(&b, " | Sector: %s", in.Sector)
	}
	fmt.Fprintf(&b, " | Basis: %s\n", period)

	writeAssumptions(&b, in.Assumptions)
	writeModels(&b, in.Result, in.Assumptions)
	writeComparison(&b, in)
	writeFinancials(&b, in.Metrics)

	return &Report{
		ID:        uuid.New().String(),
		Symbol:    strings.ToUpper(in.Symbol),
		CreatedAt: time.Now(),
		Markdown:  b.String(),
	}
}

func writeAssumptions(b *strings.Builder, a valuation.Assumptions) {
	b.WriteString("\n## Assumptions\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Short-term growth | %s |\n", pct(a.ShortTermGrowth))
	fmt.Fprintf(b, "| Terminal growth | %s |\n", pct(a.TerminalGrowth))
	fmt.Fprintf(b, "| WACC | %s |\n", pct(a.WACC))
	fmt.Fprintf(b, "| Cost of equity | %s |\n", pct(a.CostOfEquity))
	fmt.Fprintf(b, "| Tax rate | %s |\n", pct(a.TaxRate))
	fmt.Fprintf(b, "| Payout ratio | %s |\n", pct(a.PayoutRatio))
	fmt.Fprintf(b, "| Forecast horizon | %d years |\n", a.ForecastYears)
}

func writeModels(b *strings.Builder, result *valuation.Result, a valuation.Assumptions) {
	if result == nil {
		return
	}
	weights := a.ModelWeights
	if weights == nil {
		weights = valuation.DefaultWeights()
	}

	b.WriteString("\n## Model Results\n\n")
	b.WriteString("| Model | Per-share value | Weight |\n|---|---|---|\n")
	for _, name := range valuation.ModelNames {
		value, ok := result.Models[name]
		if !ok {
			continue
		}
		display := modelTitles[name]
		if display == "" {
			display = name
		}
		cell := "n/a"
		if value != valuation.Unavailable {
			cell = num(value)
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", display, cell, pct(weights[name]))
	}

	if result.WeightedAverage != valuation.Unavailable {
		fmt.Fprintf(b, "\n**Weighted fair value: %s per share**\n", num(result.WeightedAverage))
	}
	if s := result.Summary; s != nil {
		fmt.Fprintf(b, "\nRange %s to %s across %d of %d models (mean %s).\n",
			num(s.Min), num(s.Max), s.ModelsUsed, s.TotalModels, num(s.Average))
	}
}

func writeComparison(b *strings.Builder, in Input) {
	if in.CurrentPrice == nil {
		return
	}
	b.WriteString("\n## Market Comparison\n\n")
	fmt.Fprintf(b, "- Current price: %s\n", num(*in.CurrentPrice))
	if in.UpsidePercent != nil {
		fmt.Fprintf(b, "- Upside: %.1f%%\n", *in.UpsidePercent)
	}
	if in.Recommendation != "" {
		fmt.Fprintf(b, "- Recommendation: **%s**\n", in.Recommendation)
	}
}

// Financial rows shown when present, in presentation order.
var financialRows = []struct {
	metric string
	label  string
	pctFmt bool
}{
	{metrics.Revenue, "Revenue", false},
	{metrics.NetIncome, "Net income", false},
	{metrics.TotalAssets, "Total assets", false},
	{metrics.TotalEquity, "Total equity", false},
	{metrics.EPS, "EPS", false},
	{metrics.BookValuePerShare, "Book value per share", false},
	{metrics.ROE, "ROE", true},
	{metrics.ROA, "ROA", true},
	{metrics.DebtToEquity, "Debt / equity", false},
	{metrics.CurrentRatio, "Current ratio", false},
}

func writeFinancials(b *strings.Builder, m metrics.Metrics) {
	if len(m) == 0 {
		return
	}
	b.WriteString("\n## Key Financials\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, row := range financialRows {
		v, ok := m.Get(row.metric)
		if !ok {
			continue
		}
		if row.pctFmt {
			fmt.Fprintf(b, "| %s | %s |\n", row.label, pct(v))
		} else {
			fmt.Fprintf(b, "| %s | %s |\n", row.label, num(v))
		}
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// num renders a value with thousands separators, two decimals only when
// the fraction matters.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, ".00")
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := strings.Join(groups, ",")
	if neg {
		out = "-" + out
	}
	if len(parts) == 2 {
		out += "." + parts[1]
	}
	return out
}

// Registry keeps recent reports addressable by id.
type Registry struct {
	cache *gocache.Cache
}

// NewRegistry creates a registry with the given retention. Zero keeps
// reports for a day.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{cache: gocache.New(ttl, 2*ttl)}
}

// Put registers a report under its id.
func (r *Registry) Put(rep *Report) {
	if rep == nil || rep.ID == "" {
		return
	}
	r.cache.Set(rep.ID, rep, gocache.DefaultExpiration)
}

// Get returns the report for an id, or nil when unknown or expired.
func (r *Registry) Get(id string) *Report {
	if v, ok := r.cache.Get(id); ok {
		return v.(*Report)
	}
	return nil
}

// IDs lists the currently registered report ids, sorted for stable output.
func (r *Registry) IDs() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
