// Package memory is an in-memory sheets.ReportWriter used in tests
// and when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	ports "wallet/internal/sheets"
)

type Summary struct {
	Title string
	Rows  [][]string
}

type Writer struct {
	mu        sync.Mutex
	summaries []Summary
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteSummary(_ context.Context, title string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	w.summaries = append(w.summaries, Summary{Title: title, Rows: copied})
	return nil
}

// Summaries returns everything written so far.
func (w *Writer) Summaries() []Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Summary(nil), w.summaries...)
}
