package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockval/pkg/core/statement"
)

// BundleCache persists fetched statement bundles.
// Hybrid vault: DB (primary) + file system (fallback/local).
type BundleCache struct {
	fileDir string
}

// NewBundleCache creates a bundle cache backed by the shared pool when one
// is initialized, with dir as the file fallback. An empty dir defaults to
// a local cache directory.
func NewBundleCache(dir string) *BundleCache {
	if dir == "" {
		dir = filepath.Join(".cache", "stockval", "bundles")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("[WARNING] Check BundleCache dir: %v\n", err)
	}
	return &BundleCache{fileDir: dir}
}

// BundleEntry wraps a cached bundle with its fetch metadata.
type BundleEntry struct {
	Symbol    string            `json:"symbol"`
	Quarterly bool              `json:"quarterly"`
	Bundle    *statement.Bundle `json:"bundle"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Get retrieves a cached bundle and its fetch time. A miss returns a nil
// bundle, never an error; the caller decides whether a stale hit is still
// acceptable.
func (c *BundleCache) Get(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, time.Time) {
	symbol = strings.ToUpper(symbol)

	if pool := GetPool(); pool != nil {
		query := `
			SELECT data, fetched_at
			FROM statement_bundles
			WHERE symbol = $1 AND quarterly = $2
			LIMIT 1
		`
		var dataJSON []byte
		var fetchedAt time.Time
		err := pool.QueryRow(ctx, query, symbol, quarterly).Scan(&dataJSON, &fetchedAt)
		if err != nil {
			return nil, time.Time{} // cache miss
		}
		var bundle statement.Bundle
		if err := json.Unmarshal(dataJSON, &bundle); err != nil {
			fmt.Printf("[STORE] Corrupt bundle row for %s: %v\n", symbol, err)
			return nil, time.Time{}
		}
		return &bundle, fetchedAt
	}

	return c.loadFromFile(c.bundlePath(symbol, quarterly))
}

// Save stores a bundle in the DB when available and always mirrors it to
// the file cache, so a later run without a database still finds it.
func (c *BundleCache) Save(ctx context.Context, bundle *statement.Bundle) error {
	if bundle == nil {
		return nil
	}
	symbol := strings.ToUpper(bundle.Symbol)
	bundle.Symbol = symbol
	now := time.Now()

	if pool := GetPool(); pool != nil {
		dataJSON, err := json.Marshal(bundle)
		if err != nil {
			return fmt.Errorf("failed to marshal bundle: %w", err)
		}
		query := `
			INSERT INTO statement_bundles (symbol, quarterly, data, fetched_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol, quarterly)
			DO UPDATE SET
				data = EXCLUDED.data,
				fetched_at = EXCLUDED.fetched_at
		`
		if _, err := pool.Exec(ctx, query, symbol, bundle.Quarterly, dataJSON, now); err != nil {
			return fmt.Errorf("failed to save bundle to db: %w", err)
		}
	}

	entry := BundleEntry{
		Symbol:    symbol,
		Quarterly: bundle.Quarterly,
		Bundle:    bundle,
		FetchedAt: now,
	}
	fileBytes, _ := json.MarshalIndent(entry, "", "  ")
	path := c.bundlePath(symbol, bundle.Quarterly)
	if err := ioutil.WriteFile(path, fileBytes, 0644); err != nil {
		return fmt.Errorf("failed to save bundle to file cache: %w", err)
	}
	return nil
}

// Exists checks whether a bundle is already cached anywhere.
func (c *BundleCache) Exists(ctx context.Context, symbol string, quarterly bool) bool {
	symbol = strings.ToUpper(symbol)
	if pool := GetPool(); pool != nil {
		query := `SELECT 1 FROM statement_bundles WHERE symbol = $1 AND quarterly = $2 LIMIT 1`
		var exists int
		if err := pool.QueryRow(ctx, query, symbol, quarterly).Scan(&exists); err == nil {
			return true
		}
	}
	_, err := os.Stat(c.bundlePath(symbol, quarterly))
	return err == nil
}

func (c *BundleCache) bundlePath(symbol string, quarterly bool) string {
	kind := "year"
	if quarterly {
		kind = "quarter"
	}
	return filepath.Join(c.fileDir, fmt.Sprintf("%s_%s.json", symbol, kind))
}

func (c *BundleCache) loadFromFile(path string) (*statement.Bundle, time.Time) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, time.Time{} // not found
	}

	// Entry wrapper first, raw bundle as the legacy shape.
	var entry BundleEntry
	if err := json.Unmarshal(bytes, &entry); err == nil && entry.Bundle != nil {
		return entry.Bundle, entry.FetchedAt
	}

	var bundle statement.Bundle
	if err := json.Unmarshal(bytes, &bundle); err != nil {
		fmt.Printf("[STORE] Corrupt bundle file %s: %v\n", path, err)
		return nil, time.Time{}
	}
	return &bundle, time.Time{}
}
