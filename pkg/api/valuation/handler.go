package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockval/pkg/core/engine"
)

var eng *engine.Engine

func InitHandler(e *engine.Engine) {
	eng = e
}

type errorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// HandleValuation runs the valuation models for the POSTed symbol and
// scenario. Percent-style fields in the body override the configured
// defaults; missing fields keep them.
func HandleValuation(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req engine.ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	resp, err := eng.Valuate(r.Context(), req)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownSymbol) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Stock symbol '%s' not found", req.Symbol))
			return
		}
		fmt.Printf("[VALUATION] Request for %s failed: %v\n", req.Symbol, err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Valuation failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
