package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type transactionRequest struct {
	Amount            string   `json:"amount"`
	Currency          string   `json:"currency"`
	Type              string   `json:"type"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags"`
	Date              string   `json:"date"`
	Recurring         bool     `json:"recurring"`
	RecurrencePattern string   `json:"recurrence_pattern"`
	EndDate           string   `json:"end_date"`
}

type transactionResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	Amount            string   `json:"amount"`
	Currency          string   `json:"currency"`
	ConvertedAmount   string   `json:"converted_amount"`
	Type              string   `json:"type"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags,omitempty"`
	Date              string   `json:"date"`
	Recurring         bool     `json:"recurring"`
	RecurrencePattern string   `json:"recurrence_pattern,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	Status            string   `json:"status"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                t.ID.String(),
		UserID:            t.UserID.String(),
		Amount:            t.Amount.String(),
		Currency:          t.Currency,
		ConvertedAmount:   t.ConvertedAmount.String(),
		Type:              string(t.Type),
		Category:          string(t.Category),
		Tags:              t.Tags,
		Date:              t.Date.UTC().Format(time.RFC3339),
		Recurring:         t.Recurring,
		RecurrencePattern: string(t.RecurrencePattern),
		Status:            string(t.Status),
	}
	if !t.EndDate.IsZero() {
		resp.EndDate = t.EndDate.UTC().Format(time.RFC3339)
	}
	return resp
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

// parseDate accepts both date-only and RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrValidation, s)
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), services.CreateTransactionInput{
		UserID:            user.ID,
		Amount:            amount,
		Currency:          req.Currency,
		Type:              core.TransactionType(req.Type),
		Category:          core.Category(req.Category),
		Tags:              req.Tags,
		Date:              date,
		Recurring:         req.Recurring,
		RecurrencePattern: core.RecurrencePattern(req.RecurrencePattern),
		EndDate:           endDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

// listParams reads the shared tag/sort query parameters.
func listParams(r *http.Request) (tags []string, sortBy string, descending bool) {
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	sortBy = r.URL.Query().Get("sort")
	descending = r.URL.Query().Get("order") == "desc"
	return tags, sortBy, descending
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tags, sortBy, descending := listParams(r)
	txs, err := s.transactions.ListForUser(r.Context(), user.ID, tags, sortBy, descending)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleListAllTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tags, sortBy, descending := listParams(r)
	txs, err := s.transactions.ListAll(r.Context(), user, tags, sortBy, descending)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

// ownedTransaction loads a transaction and rejects access by anyone other
// than its owner or an admin.
func (s *Server) ownedTransaction(r *http.Request) (core.Transaction, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return core.Transaction{}, err
	}
	id, err := pathID(r)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.UserID != user.ID && user.Role != core.RoleAdmin {
		return core.Transaction{}, fmt.Errorf("%w: transaction belongs to another user", core.ErrUnauthorized)
	}
	return t, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTransaction(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTransaction(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t.Amount = amount
	if req.Currency != "" {
		t.Currency = req.Currency
	}
	t.Type = core.TransactionType(req.Type)
	t.Category = core.Category(req.Category)
	t.Tags = req.Tags
	if !date.IsZero() {
		t.Date = date
	}
	t.Recurring = req.Recurring
	t.RecurrencePattern = core.RecurrencePattern(req.RecurrencePattern)
	t.EndDate = endDate

	updated, err := s.transactions.Update(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTransaction(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.transactions.Delete(r.Context(), t.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTransaction(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.transactions.MarkCompleted(r.Context(), t.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}
