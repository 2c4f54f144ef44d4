package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type reportResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FilePath    string `json:"file_path"`
	GeneratedAt string `json:"generated_at"`
}

func toReportResponse(rep core.Report) reportResponse {
	return reportResponse{
		ID:          rep.ID.String(),
		UserID:      rep.UserID.String(),
		FilePath:    rep.FilePath,
		GeneratedAt: rep.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.reports.GenerateMonthly(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportResponse(report))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := s.reports.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]reportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportResponse(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDownloadReport streams the statement CSV itself.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.reports.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.csv"`)
	http.ServeFile(w, r, report.FilePath)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.reports.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
