package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type goalRequest struct {
	Name                 string `json:"name"`
	TargetAmount         string `json:"target_amount"`
	Deadline             string `json:"deadline"`
	AllocationPercentage string `json:"allocation_percentage"`
}

type goalResponse struct {
	ID                   string `json:"id"`
	UserID               string `json:"user_id"`
	Name                 string `json:"name"`
	TargetAmount         string `json:"target_amount"`
	CurrentAmount        string `json:"current_amount"`
	Deadline             string `json:"deadline"`
	AllocationPercentage string `json:"allocation_percentage"`
	Complete             bool   `json:"complete"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:                   g.ID.String(),
		UserID:               g.UserID.String(),
		Name:                 g.Name,
		TargetAmount:         g.TargetAmount.String(),
		CurrentAmount:        g.CurrentAmount.String(),
		Deadline:             g.Deadline.UTC().Format(time.RFC3339),
		AllocationPercentage: g.AllocationPercentage.String(),
		Complete:             g.Complete(),
	}
}

func parsePercentage(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid allocation percentage %q", core.ErrValidation, s)
	}
	return pct, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pct, err := parsePercentage(req.AllocationPercentage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.goals.Create(r.Context(), services.CreateGoalInput{
		UserID:               user.ID,
		Name:                 req.Name,
		TargetAmount:         target,
		Deadline:             deadline,
		AllocationPercentage: pct,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := s.goals.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ownedGoal(r *http.Request) (core.Goal, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return core.Goal{}, err
	}
	id, err := pathID(r)
	if err != nil {
		return core.Goal{}, err
	}
	g, err := s.goals.Get(r.Context(), id)
	if err != nil {
		return core.Goal{}, err
	}
	if g.UserID != user.ID {
		return core.Goal{}, fmt.Errorf("%w: goal belongs to another user", core.ErrUnauthorized)
	}
	return g, nil
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.ownedGoal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.ownedGoal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pct, err := parsePercentage(req.AllocationPercentage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.goals.Update(r.Context(), g.ID, services.UpdateGoalInput{
		TargetAmount:         target,
		CurrentAmount:        g.CurrentAmount,
		Deadline:             deadline,
		AllocationPercentage: pct,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.ownedGoal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.goals.Delete(r.Context(), g.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
