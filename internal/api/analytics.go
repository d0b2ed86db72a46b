package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stresssense/stresssense/internal/services"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analytics.Summary(r.Context(), orgID(r), chi.URLParam(r, "surveyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Stats(orgID(r), chi.URLParam(r, "surveyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/surveys/{surveyID}/export?format=long|wide
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	rows, err := s.analytics.ExportRows(orgID(r), surveyID)
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	var out []byte
	switch format {
	case "", "long":
		out, err = services.ExportLongCSV(rows)
	case "wide":
		out, err = services.ExportWideCSV(services.WideInputs(rows))
	default:
		writeError(w, services.NewInvalidError("format must be long or wide"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv", surveyID, formatOrLong(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func formatOrLong(format string) string {
	if format == "" {
		return "long"
	}
	return format
}
