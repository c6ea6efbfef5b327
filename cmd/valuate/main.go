package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"stockval/pkg/core/config"
	"stockval/pkg/core/engine"
	"stockval/pkg/core/provider"
	"stockval/pkg/core/store"
	coreSymbols "stockval/pkg/core/symbols"

	"github.com/joho/godotenv"
)

// One-shot valuation from the command line: runs the full model suite
// for a symbol and prints the markdown report.
func main() {
	symbol := flag.String("symbol", "", "stock symbol to value (required)")
	configPath := flag.String("config", "config/valuation.yaml", "path to the YAML config")
	out := flag.String("out", "", "write the report here instead of stdout")
	flag.Parse()

	if *symbol == "" {
		fmt.Println("Usage: valuate -symbol VNM [-config config/valuation.yaml] [-out report.md]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		fmt.Println("[CONFIG] Loaded .env")
	}
	cfg := config.Load(*configPath)

	listing, err := coreSymbols.LoadListing(cfg.Data.ListingCSV)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load symbol listing: %v\n", err)
		listing = coreSymbols.NewListing(nil)
	}
	sectors, err := coreSymbols.LoadSectors(cfg.Data.IndustriesCSV)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load industry mapping: %v\n", err)
	}
	listing.ApplySectors(sectors)

	client := provider.New(cfg.Provider)
	bundles := store.NewBundleCache(cfg.Data.CacheDir)
	eng := engine.New(cfg, client, bundles, listing, sectors)

	ctx := context.Background()
	resp, err := eng.Valuate(ctx, engine.ValuationRequest{Symbol: *symbol})
	if err != nil {
		log.Fatalf("Valuation failed: %v", err)
	}

	fmt.Printf("\n=== %s ===\n", resp.Symbol)
	for model, value := range resp.Valuations {
		fmt.Printf("  %-18s %.2f\n", model, value)
	}
	if resp.MarketComparison != nil {
		fmt.Printf("  price %.2f, upside %.1f%%, %s\n",
			resp.MarketComparison.CurrentPrice,
			resp.MarketComparison.UpsideDownsidePct,
			resp.MarketComparison.Recommendation)
	}

	rep := eng.Report(ctx, resp.ReportID)
	if rep == nil {
		log.Fatal("Report was not generated")
	}
	if *out == "" {
		fmt.Println()
		fmt.Println(rep.Markdown)
		return
	}
	if err := os.WriteFile(*out, []byte(rep.Markdown), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Report written to %s\n", *out)
}
