package http

import (
	"net/http"

	"wallet/internal/core"

	"github.com/shopspring/decimal"
)

type addBudgetRequest struct {
	Month      string `json:"month"`
	CategoryID string `json:"categoryId"`
	Amount     string `json:"amount"`
}

// budgetView decorates a budget with its derived consumption state.
type budgetView struct {
	core.Budget
	Progress *decimal.Decimal `json:"progress,omitempty"`
	Over     bool             `json:"over"`
}

func newBudgetView(b core.Budget) budgetView {
	view := budgetView{Budget: b, Over: b.Over()}
	if progress, ok := b.Progress(); ok {
		view.Progress = &progress
	}
	return view
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), sess, r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, newBudgetView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req addBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.ledger.AddBudget(r.Context(), sess, core.NewBudget{
		Month:      req.Month,
		CategoryID: req.CategoryID,
		Amount:     amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	writeJSON(w, http.StatusCreated, newBudgetView(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteBudget(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}
