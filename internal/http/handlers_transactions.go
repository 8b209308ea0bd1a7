package http

import (
	"net/http"

	"wallet/internal/core"
)

type addTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	AccountID   string `json:"accountId"`
	Date        string `json:"date"`
}

// addTransactionResponse flags when the insert pushed a budget past its
// limit so the client can surface a warning.
type addTransactionResponse struct {
	Transaction    core.Transaction `json:"transaction"`
	BudgetExceeded bool             `json:"budgetExceeded"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := core.NewTransaction{
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		AccountID:   req.AccountID,
		Date:        req.Date,
	}

	tx, exceeded, err := s.ledger.AddTransaction(r.Context(), sess, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	writeJSON(w, http.StatusCreated, addTransactionResponse{Transaction: tx, BudgetExceeded: exceeded})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}
