package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.dashboard.Summary(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recommendations, err := s.trends.Analyze(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recommendations == nil {
		recommendations = []core.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendations)
}
