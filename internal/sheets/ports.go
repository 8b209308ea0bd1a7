// Package sheets defines the outbound port for pushing report
// summaries to a spreadsheet.
package sheets

import "context"

// ReportWriter receives a titled block of rows, header included.
type ReportWriter interface {
	WriteSummary(ctx context.Context, title string, rows [][]string) error
}
