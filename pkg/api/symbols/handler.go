package symbols

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"stockval/pkg/core/symbols"
)

var index *symbols.Index
var listing *symbols.Listing

// InitHandler wires the search index and the listing. A nil index is
// tolerated; search then falls back to a linear scan of the listing.
func InitHandler(idx *symbols.Index, l *symbols.Listing) {
	index = idx
	listing = l
}

type searchResponse struct {
	Query   string            `json:"query"`
	Results []symbols.Company `json:"results"`
	Count   int               `json:"count"`
}

// HandleSearch serves the symbol directory search.
func HandleSearch(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "q query parameter is required"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var results []symbols.Company
	if index != nil {
		results = index.Search(q, limit)
	} else {
		results = scanListing(q, limit)
	}
	if results == nil {
		results = []symbols.Company{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(searchResponse{Query: q, Results: results, Count: len(results)})
}

// scanListing is the index-less fallback: prefix match on the symbol,
// substring match on the name.
func scanListing(q string, limit int) []symbols.Company {
	if listing == nil {
		return nil
	}
	upper := strings.ToUpper(q)
	var out []symbols.Company
	for _, c := range listing.Companies {
		if strings.HasPrefix(c.Symbol, upper) || strings.Contains(strings.ToUpper(c.Name), upper) {
			out = append(out, c)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
