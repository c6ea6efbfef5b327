// Package engine orchestrates a request end to end: symbol validation,
// statement acquisition through the cache, metric normalization and the
// valuation models. Handlers stay thin; everything testable lives here.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockval/pkg/core/config"
	"stockval/pkg/core/metrics"
	"stockval/pkg/core/report"
	"stockval/pkg/core/statement"
	"stockval/pkg/core/symbols"
	"stockval/pkg/core/validate"
)

// ErrUnknownSymbol marks a request for a symbol the listing does not
// carry. Handlers map it to a not-found response.
var ErrUnknownSymbol = errors.New("unknown symbol")

// StatementSource acquires fresh statement data. Satisfied by
// provider.Client.
type StatementSource interface {
	FetchBundle(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, error)
	CurrentPrice(ctx context.Context, symbol string, board *statement.Table) *float64
}

// BundleStore persists fetched bundles across requests and restarts.
// Satisfied by store.BundleCache.
type BundleStore interface {
	Get(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, time.Time)
	Save(ctx context.Context, bundle *statement.Bundle) error
}

// ReportSink is optional durable report storage behind the in-memory
// registry. Satisfied by store.ReportRepo.
type ReportSink interface {
	Save(ctx context.Context, rep *report.Report) error
	Load(ctx context.Context, id string) (*report.Report, error)
}

// Engine wires the collaborators together for the API handlers.
type Engine struct {
	cfg     config.Config
	source  StatementSource
	bundles BundleStore
	sink    ReportSink
	specs   []statement.FieldSpec
	listing *symbols.Listing
	sectors map[string]string
	reports *report.Registry
}

// New builds an engine. listing and sectors may be empty when the data
// files are absent; validation then fails open. sink may be nil when no
// database is configured.
func New(cfg config.Config, source StatementSource, bundles BundleStore, listing *symbols.Listing, sectors map[string]string) *Engine {
	return &Engine{
		cfg:     cfg,
		source:  source,
		bundles: bundles,
		specs:   config.FieldSpecs(cfg.Data.FieldOverrides),
		listing: listing,
		sectors: sectors,
		reports: report.NewRegistry(0),
	}
}

// WithReportSink attaches durable report storage.
func (e *Engine) WithReportSink(sink ReportSink) *Engine {
	e.sink = sink
	return e
}

// validate normalizes the symbol and checks it against the listing.
func (e *Engine) validate(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("%w: empty symbol", ErrUnknownSymbol)
	}
	if !e.listing.Validate(symbol) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return symbol, nil
}

// bundle returns statements for a symbol, serving the cache while fresh,
// refetching when stale, and falling back to a stale copy when the vendor
// is unreachable. A stale answer beats no answer.
func (e *Engine) bundle(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, error) {
	ttl := time.Duration(e.cfg.Provider.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	cached, fetchedAt := e.bundles.Get(ctx, symbol, quarterly)
	if cached != nil && !fetchedAt.IsZero() && time.Since(fetchedAt) < ttl {
		fmt.Printf("[CACHE] Bundle hit for %s\n", symbol)
		return cached, nil
	}

	fresh, err := e.source.FetchBundle(ctx, symbol, quarterly)
	if err != nil {
		if cached != nil {
			fmt.Printf("[CACHE] Serving stale bundle for %s, refresh failed: %v\n", symbol, err)
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", symbol, err)
	}

	if err := e.bundles.Save(ctx, fresh); err != nil {
		fmt.Printf("[WARNING] Failed to cache bundle for %s: %v\n", symbol, err)
	}
	return fresh, nil
}

// resolveMetrics runs extraction and normalization over a bundle and
// attaches the live price when one is available.
func (e *Engine) resolveMetrics(ctx context.Context, symbol string, bundle *statement.Bundle) metrics.Metrics {
	m := metrics.Metrics(statement.Extract(bundle, e.specs))
	if price := e.source.CurrentPrice(ctx, symbol, bundle.PriceBoard); price != nil {
		m.Set(metrics.CurrentPrice, *price)
	}
	m = metrics.Normalize(m)
	e.checkBalanceSheet(symbol, m)
	return m
}

// checkBalanceSheet logs when the extracted balance sheet does not tie.
// A broken identity usually means the resolver bound a wrong row, so the
// figures downstream deserve suspicion.
func (e *Engine) checkBalanceSheet(symbol string, m metrics.Metrics) {
	assets, aok := m.Get(metrics.TotalAssets)
	liabs, lok := m.Get(metrics.TotalLiabilities)
	equity, eok := m.Get(metrics.TotalEquity)
	if !aok || !lok || !eok {
		return
	}
	if check := validate.CheckBalanceEquation(assets, liabs, equity, 0.01); !check.Balanced {
		fmt.Printf("[WARNING] %s balance sheet off by %.1f%%: assets %.0f vs liabilities+equity %.0f\n",
			symbol, check.Relative*100, assets, liabs+equity)
	}
}

// candidatesFor returns the candidate labels the resolution table binds
// to a metric on one statement.
func (e *Engine) candidatesFor(metric string, stmt statement.StatementName) []statement.Key {
	for _, spec := range e.specs {
		if spec.Metric == metric && spec.Statement == stmt {
			return spec.Candidates
		}
	}
	return nil
}

// Report returns a generated report by id, trying the in-memory registry
// first and durable storage second.
func (e *Engine) Report(ctx context.Context, id string) *report.Report {
	if rep := e.reports.Get(id); rep != nil {
		return rep
	}
	if e.sink != nil {
		if rep, err := e.sink.Load(ctx, id); err == nil {
			return rep
		}
	}
	return nil
}
