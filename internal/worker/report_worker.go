// Package worker consumes ledger events and regenerates monthly report
// exports out of band.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/report"
	"wallet/internal/sheets"
)

// ReportWorker rebuilds the per-month category summary whenever a
// transaction is recorded or deleted. CSV files land in exportDir; a
// sheets sink is optional.
type ReportWorker struct {
	reporter  *report.Reporter
	sink      sheets.ReportWriter
	exportDir string
	logger    *log.Logger
}

func NewReportWorker(reporter *report.Reporter, sink sheets.ReportWriter, exportDir string, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportWorker{
		reporter:  reporter,
		sink:      sink,
		exportDir: exportDir,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one ledger event. Returned errors cause the
// message to be requeued.
func (w *ReportWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	switch msg.Kind {
	case amqp.KindTransactionRecorded, amqp.KindTransactionDeleted:
		return w.exportMonth(ctx, msg.UserID, msg.Month)
	case amqp.KindBudgetExceeded:
		w.logger.WarnContext(ctx, "Budget exceeded",
			log.FieldUserID, msg.UserID,
			log.FieldBudgetID, msg.BudgetID,
			log.FieldCategoryID, msg.CategoryID,
			log.FieldMonth, msg.Month)
		return nil
	default:
		w.logger.WarnContext(ctx, "Unknown event kind, dropping", "kind", msg.Kind)
		return nil
	}
}

func (w *ReportWorker) exportMonth(ctx context.Context, userID, month string) error {
	start, end, err := monthBounds(month)
	if err != nil {
		// malformed month is not retryable
		w.logger.WarnContext(ctx, "Dropping event with bad month",
			log.FieldMonth, month, log.FieldError, err.Error())
		return nil
	}

	sess := core.Session{UserID: userID}
	summary, err := w.reporter.RangeSummary(ctx, sess, report.GroupByCategory, start, end)
	if err != nil {
		return fmt.Errorf("range summary for %s: %w", month, err)
	}
	resolve, err := w.reporter.NameResolver(ctx, sess, report.GroupByCategory)
	if err != nil {
		return fmt.Errorf("name resolver: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(w.exportDir, report.Filename(start, end))
	if err := os.WriteFile(path, []byte(report.CSV(summary, resolve)), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if w.sink != nil {
		title := fmt.Sprintf("%s (%s)", month, userID)
		if err := w.sink.WriteSummary(ctx, title, report.Rows(summary, resolve)); err != nil {
			return fmt.Errorf("push summary to sheet: %w", err)
		}
	}

	w.logger.InfoContext(ctx, "Monthly export regenerated",
		log.FieldUserID, userID,
		log.FieldMonth, month,
		"path", path,
		"groups", len(summary))
	return nil
}

// monthBounds returns the first and last day of a YYYY-MM month.
func monthBounds(month string) (string, string, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("parse month %q: %w", month, err)
	}
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02"), nil
}
