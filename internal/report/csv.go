package report

import (
	"fmt"
	"sort"
	"strings"
)

// CSVHeader is the fixed export header; column order and spelling are
// part of the export contract.
const CSVHeader = "Name,Income,Expense,Net"

// Rows renders a range summary as string cells: the header row then one
// row per group, sorted by resolved name. Values are plain decimals
// with no currency symbol and no thousands separators.
func Rows(summary map[string]Totals, resolveName func(string) string) [][]string {
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, nj := resolveName(keys[i]), resolveName(keys[j])
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})

	rows := make([][]string, 0, len(keys)+1)
	rows = append(rows, strings.Split(CSVHeader, ","))
	for _, key := range keys {
		totals := summary[key]
		rows = append(rows, []string{
			resolveName(key),
			totals.Income.String(),
			totals.Expense.String(),
			totals.Net().String(),
		})
	}
	return rows
}

// CSV renders a range summary as CSV text. Names are written as-is; a
// name containing a comma will break the column layout (known
// limitation of the format).
func CSV(summary map[string]Totals, resolveName func(string) string) string {
	var b strings.Builder
	for _, row := range Rows(summary, resolveName) {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// Filename returns the export filename for a date range:
// wallet_report_<startDate>_<endDate>.csv.
func Filename(startDate, endDate string) string {
	return fmt.Sprintf("wallet_report_%s_%s.csv", startDate, endDate)
}
