package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"stockval/pkg/api/health"
	"stockval/pkg/api/report"
	"stockval/pkg/api/stock"
	"stockval/pkg/api/symbols"
	"stockval/pkg/api/valuation"
	"stockval/pkg/core/config"
	"stockval/pkg/core/engine"
	"stockval/pkg/core/provider"
	"stockval/pkg/core/store"
	coreSymbols "stockval/pkg/core/symbols"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := config.Load("config/valuation.yaml")

	// Database is optional: without DATABASE_URL the caches run on files
	// and reports live in memory only.
	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Database unavailable, using file caches: %v\n", err)
	} else {
		fmt.Println("[STORE] Database connected")
	}

	// Symbol directory
	listing, err := coreSymbols.LoadListing(cfg.Data.ListingCSV)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load symbol listing: %v\n", err)
		fmt.Println("  Symbol validation is disabled, all symbols pass")
		listing = coreSymbols.NewListing(nil)
	}
	sectors, err := coreSymbols.LoadSectors(cfg.Data.IndustriesCSV)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load industry mapping: %v\n", err)
	}
	listing.ApplySectors(sectors)

	index, err := coreSymbols.OpenIndex(cfg.Data.IndexPath, listing)
	if err != nil {
		fmt.Printf("[WARNING] Symbol index unavailable, search degrades to a listing scan: %v\n", err)
		index = nil
	}

	// Engine over the vendor client and the hybrid bundle cache
	client := provider.New(cfg.Provider)
	bundles := store.NewBundleCache(cfg.Data.CacheDir)
	eng := engine.New(cfg, client, bundles, listing, sectors)
	if store.GetPool() != nil {
		eng = eng.WithReportSink(store.NewReportRepo())
	}

	// Valuation endpoints
	stock.InitHandler(eng)
	valuation.InitHandler(eng)
	report.InitHandler(eng)
	symbols.InitHandler(index, listing)

	http.HandleFunc("/api/health", health.HandleHealth)
	http.HandleFunc("/api/stock-data", stock.HandleStockData)
	http.HandleFunc("/api/valuation", valuation.HandleValuation)
	http.HandleFunc("/api/symbols/search", symbols.HandleSearch)
	http.HandleFunc("/api/report", report.HandleReport)

	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - GET  /api/health")
	fmt.Println("  - GET  /api/stock-data?symbol=VNM")
	fmt.Println("  - POST /api/valuation")
	fmt.Println("  - GET  /api/symbols/search?q=milk")
	fmt.Println("  - GET  /api/report?id=<uuid>")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
