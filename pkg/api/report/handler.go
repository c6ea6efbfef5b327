package report

import (
	"fmt"
	"net/http"

	"stockval/pkg/core/engine"
	"stockval/pkg/core/report"
)

var eng *engine.Engine

func InitHandler(e *engine.Engine) {
	eng = e
}

// HandleReport serves a stored valuation report as a rendered HTML page.
// Append format=md to get the raw markdown instead.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	rep := eng.Report(r.Context(), id)
	if rep == nil {
		http.Error(w, fmt.Sprintf("No report found for id %s", id), http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, rep.Markdown)
		return
	}

	page, err := report.RenderPage(rep)
	if err != nil {
		fmt.Printf("[REPORT] Render failed for %s: %v\n", id, err)
		http.Error(w, "Report rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}
