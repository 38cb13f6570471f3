package http

import (
	"encoding/json"
	"log"
	"net/http"

	"quizdesk/internal/domain"
)

// ResultLog is the slice of the result store the admin surface needs.
type ResultLog interface {
	LoadAll() ([]domain.ResultRecord, error)
	ClearAll() error
	Raw() ([]byte, error)
}

// AdminHandler exposes the saved-results operations over HTTP.
type AdminHandler struct {
	results ResultLog
}

func NewAdminHandler(results ResultLog) *AdminHandler {
	return &AdminHandler{results: results}
}

// HandleResults serves the decoded history (GET) and the irreversible
// clear (DELETE). Clients are expected to confirm before deleting.
func (h *AdminHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := h.results.LoadAll()
		if err != nil {
			log.Printf("load results: %v", err)
			http.Error(w, "failed to load results", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []domain.ResultRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	case http.MethodDelete:
		if err := h.results.ClearAll(); err != nil {
			log.Printf("clear results: %v", err)
			http.Error(w, "failed to clear results", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleResultsCSV serves the raw log bytes for export.
func (h *AdminHandler) HandleResultsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := h.results.Raw()
	if err != nil {
		log.Printf("export results: %v", err)
		http.Error(w, "failed to read results", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results_export.csv"`)
	_, _ = w.Write(data)
}
