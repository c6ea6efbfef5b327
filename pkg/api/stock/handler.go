package stock

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stockval/pkg/core/engine"
)

var eng *engine.Engine

func InitHandler(e *engine.Engine) {
	eng = e
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// HandleStockData serves the fundamentals payload for one symbol:
// normalized metrics, the historical ratio series and the live price.
func HandleStockData(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}

	fmt.Printf("[STOCK] Fetching data for %s\n", strings.ToUpper(symbol))
	data, err := eng.StockData(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownSymbol) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Stock symbol '%s' not found", strings.ToUpper(symbol)))
			return
		}
		fmt.Printf("[STOCK] Lookup for %s failed: %v\n", symbol, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Could not load data for '%s': %v", strings.ToUpper(symbol), err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
