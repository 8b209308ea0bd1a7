package http

import (
	"net/http"
	"strings"

	"wallet/internal/core"

	"github.com/shopspring/decimal"
)

type addAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	accounts, err := s.ledger.ListAccounts(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req addAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := core.NewAccount{
		Name:     req.Name,
		Type:     core.AccountType(req.Type),
		Currency: req.Currency,
	}
	// opening balances may be zero or negative, unlike amounts
	if req.Balance != "" {
		balance, err := decimal.NewFromString(strings.ReplaceAll(req.Balance, ",", "."))
		if err != nil {
			writeError(w, r, core.NewValidationError("balance", "must be a number"))
			return
		}
		in.Balance = balance
	}

	account, err := s.ledger.AddAccount(r.Context(), sess, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteAccount(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}
