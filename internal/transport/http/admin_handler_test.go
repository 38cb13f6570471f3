package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"quizdesk/internal/domain"
	"quizdesk/internal/store"
)

func TestAdminResultsEndpoints(t *testing.T) {
	resultLog := store.NewFileStore(filepath.Join(t.TempDir(), "results.csv"))
	if err := resultLog.Append(adminTestRecord()); err != nil {
		t.Fatalf("append: %v", err)
	}

	admin := NewAdminHandler(resultLog)
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/results", admin.HandleResults)
	mux.HandleFunc("/admin/results.csv", admin.HandleResultsCSV)
	server := httptest.NewServer(mux)
	defer server.Close()

	// List returns the decoded history.
	resp, err := http.Get(server.URL + "/admin/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	var rows []domain.ResultRecord
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(rows) != 1 || rows[0].Name != "Jane Doe" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// The CSV export is byte-identical to the log.
	resp, err = http.Get(server.URL + "/admin/results.csv")
	if err != nil {
		t.Fatalf("get csv: %v", err)
	}
	exported, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	raw, err := resultLog.Raw()
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if !bytes.Equal(exported, raw) {
		t.Fatalf("export differs from log")
	}

	// Clear deletes everything.
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/admin/results", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/admin/results")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	rows = nil
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(rows) != 0 {
		t.Fatalf("expected empty history after clear, got %+v", rows)
	}
}

func adminTestRecord() domain.ResultRecord {
	return domain.ResultRecord{
		Timestamp:      time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		ScorePercent:   80,
		CorrectCount:   4,
		TotalQuestions: 5,
		Answers: []domain.Answer{
			{Question: 1, Chosen: 1},
			{Question: 2, Chosen: 0},
			{Question: 3, Chosen: -1},
			{Question: 4, Chosen: 1},
			{Question: 5, Chosen: 3},
		},
	}
}
