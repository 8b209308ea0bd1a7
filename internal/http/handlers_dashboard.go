package http

import (
	"fmt"
	"net/http"
	"strconv"

	"wallet/internal/log"
	"wallet/internal/report"

	"github.com/shopspring/decimal"
)

const defaultSeriesMonths = 6

type dashboardPayload struct {
	TotalBalance decimal.Decimal         `json:"totalBalance"`
	Month        report.MonthStats       `json:"month"`
	Series       report.MonthlySeries    `json:"series"`
	Breakdown    []report.CategoryAmount `json:"breakdown"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	months := defaultSeriesMonths
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "months must be between 1 and 24"})
			return
		}
		months = n
	}

	key := fmt.Sprintf("%s:dashboard:%d", sess.UserID, months)
	if payload, hit := s.dashCache.Get(key); hit {
		log.FromContext(ctx).Debug("Dashboard served from cache", log.FieldUserID, sess.UserID)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	total, err := s.reporter.TotalBalance(ctx, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.reporter.MonthStats(ctx, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	series, err := s.reporter.MonthlySeries(ctx, sess, months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	breakdown, err := s.reporter.CategoryBreakdown(ctx, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := dashboardPayload{
		TotalBalance: total,
		Month:        stats,
		Series:       series,
		Breakdown:    breakdown,
	}
	s.dashCache.Set(key, payload)
	writeJSON(w, http.StatusOK, payload)
}
