package http

import (
	"fmt"
	"net/http"

	"wallet/internal/report"
)

type summaryRow struct {
	Name    string `json:"name"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

func (s *Server) reportParams(r *http.Request) (report.GroupBy, string, string) {
	q := r.URL.Query()
	groupBy := report.GroupBy(q.Get("groupBy"))
	if groupBy == "" {
		groupBy = report.GroupByCategory
	}
	return groupBy, q.Get("startDate"), q.Get("endDate")
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	groupBy, start, end := s.reportParams(r)
	summary, err := s.reporter.RangeSummary(ctx, sess, groupBy, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resolve, err := s.reporter.NameResolver(ctx, sess, groupBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := make([]summaryRow, 0, len(summary))
	for _, cells := range report.Rows(summary, resolve)[1:] {
		rows = append(rows, summaryRow{
			Name:    cells[0],
			Income:  cells[1],
			Expense: cells[2],
			Net:     cells[3],
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleReportExport streams the summary as a CSV attachment.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	groupBy, start, end := s.reportParams(r)
	summary, err := s.reporter.RangeSummary(ctx, sess, groupBy, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resolve, err := s.reporter.NameResolver(ctx, sess, groupBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(start, end)))
	fmt.Fprint(w, report.CSV(summary, resolve))
}
