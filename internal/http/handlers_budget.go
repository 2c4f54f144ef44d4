package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type budgetRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type budgetResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Type          string `json:"type"`
	Category      string `json:"category,omitempty"`
	Amount        string `json:"amount"`
	CurrentAmount string `json:"current_amount"`
	Month         string `json:"month,omitempty"`
	Year          int    `json:"year,omitempty"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:            b.ID.String(),
		UserID:        b.UserID.String(),
		Type:          string(b.Type),
		Category:      string(b.Category),
		Amount:        b.Amount.String(),
		CurrentAmount: b.CurrentAmount.String(),
		Month:         b.Month,
		Year:          b.Year,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.budgets.Create(r.Context(), services.CreateBudgetInput{
		UserID:   user.ID,
		Type:     core.BudgetType(req.Type),
		Category: core.Category(req.Category),
		Amount:   amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budgets, err := s.budgets.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ownedBudget(r *http.Request) (core.Budget, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return core.Budget{}, err
	}
	id, err := pathID(r)
	if err != nil {
		return core.Budget{}, err
	}
	b, err := s.budgets.Get(r.Context(), id)
	if err != nil {
		return core.Budget{}, err
	}
	if b.UserID != user.ID {
		return core.Budget{}, fmt.Errorf("%w: budget belongs to another user", core.ErrUnauthorized)
	}
	return b, nil
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBudget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBudget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.budgets.UpdateAmount(r.Context(), b.ID, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBudget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.budgets.Delete(r.Context(), b.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
