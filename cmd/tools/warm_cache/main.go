package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"stockval/pkg/core/config"
	"stockval/pkg/core/provider"
	"stockval/pkg/core/store"
	coreSymbols "stockval/pkg/core/symbols"

	"github.com/joho/godotenv"
)

// Bulk bundle prefetcher. Walks the listing and fills the statement
// cache so the first API request for each symbol is served warm. The
// client's rate limiter paces the vendor calls.
func main() {
	configPath := flag.String("config", "config/valuation.yaml", "path to the YAML config")
	limit := flag.Int("limit", 0, "stop after this many symbols (0 means all)")
	annual := flag.Bool("annual", false, "fetch fiscal-year statements instead of quarterly")
	flag.Parse()

	godotenv.Load()
	cfg := config.Load(*configPath)

	listing, err := coreSymbols.LoadListing(cfg.Data.ListingCSV)
	if err != nil {
		log.Fatalf("Cannot warm the cache without a listing: %v", err)
	}

	client := provider.New(cfg.Provider)
	cache := store.NewBundleCache(cfg.Data.CacheDir)
	ctx := context.Background()

	quarterly := !*annual
	fetched, failed := 0, 0
	for i, company := range listing.Companies {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Printf("\n=== Processing %s (%d/%d) ===\n", company.Symbol, i+1, listing.Len())

		bundle, err := client.FetchBundle(ctx, company.Symbol, quarterly)
		if err != nil {
			log.Printf("Error fetching %s: %v", company.Symbol, err)
			failed++
			continue
		}
		if err := cache.Save(ctx, bundle); err != nil {
			log.Printf("Error caching %s: %v", company.Symbol, err)
			failed++
			continue
		}
		fetched++
	}

	fmt.Printf("\nDone: %d cached, %d failed\n", fetched, failed)
}
