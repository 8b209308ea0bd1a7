// Package report computes dashboard and report aggregates from the
// ledger. Everything here is read-side: no function mutates the store.
package report

import (
	"context"
	"sort"
	"time"

	"wallet/internal/core"
	"wallet/internal/storage"

	"github.com/shopspring/decimal"
)

// Fallback label for transactions whose category no longer resolves.
const otherCategory = "Other"

// GroupBy selects the grouping key for range summaries.
type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByAccount  GroupBy = "account"
)

// MonthlySeries holds parallel sequences for the trends chart, oldest
// month first.
type MonthlySeries struct {
	Months   []string          `json:"months"`
	Income   []decimal.Decimal `json:"income"`
	Expenses []decimal.Decimal `json:"expenses"`
}

// CategoryAmount is one slice of the expenses-by-category chart.
type CategoryAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Totals accumulates income and expense for one summary group.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net is income minus expense, computed at render time rather than stored.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// MonthStats summarizes the current calendar month for the dashboard.
type MonthStats struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// Reporter reads the store and derives aggregates for one user at a time.
type Reporter struct {
	store storage.Store
	now   func() time.Time
}

func NewReporter(store storage.Store) *Reporter {
	return &Reporter{store: store, now: time.Now}
}

// WithClock fixes the wall clock, for tests.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	return &Reporter{store: r.store, now: now}
}

func (r *Reporter) transactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	all, err := storage.LoadAll[core.Transaction](ctx, r.store, storage.CollectionTransactions)
	if err != nil {
		return nil, err
	}
	return storage.QueryByUser(all, sess.UserID), nil
}

// MonthlySeries buckets the user's transactions into the trailing
// monthsBack calendar months ending at the current month. Months with no
// activity appear with zero income and zero expenses.
func (r *Reporter) MonthlySeries(ctx context.Context, sess core.Session, monthsBack int) (MonthlySeries, error) {
	transactions, err := r.transactions(ctx, sess)
	if err != nil {
		return MonthlySeries{}, err
	}

	now := r.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	series := MonthlySeries{
		Months:   make([]string, 0, monthsBack),
		Income:   make([]decimal.Decimal, 0, monthsBack),
		Expenses: make([]decimal.Decimal, 0, monthsBack),
	}
	for i := monthsBack - 1; i >= 0; i-- {
		month := first.AddDate(0, -i, 0).Format("2006-01")
		income, expenses := decimal.Zero, decimal.Zero
		for _, tx := range transactions {
			if core.MonthOf(tx.Date) != month {
				continue
			}
			if tx.Type == core.TypeIncome {
				income = income.Add(tx.Amount)
			} else {
				expenses = expenses.Add(tx.Amount)
			}
		}
		series.Months = append(series.Months, month)
		series.Income = append(series.Income, income)
		series.Expenses = append(series.Expenses, expenses)
	}
	return series, nil
}

// CategoryBreakdown sums expense amounts per resolved category name.
// Dangling category references land in the "Other" bucket. The result is
// sorted by value descending, name ascending on ties, so repeated calls
// over unchanged state yield identical output.
func (r *Reporter) CategoryBreakdown(ctx context.Context, sess core.Session) ([]CategoryAmount, error) {
	transactions, err := r.transactions(ctx, sess)
	if err != nil {
		return nil, err
	}
	categories, err := storage.LoadAll[core.Category](ctx, r.store, storage.CollectionCategories)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, c := range storage.QueryByUser(categories, sess.UserID) {
		names[c.ID] = c.Name
	}

	sums := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Type != core.TypeExpense {
			continue
		}
		name, ok := names[tx.Category]
		if !ok {
			name = otherCategory
		}
		sums[name] = sums[name].Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for name, value := range sums {
		out = append(out, CategoryAmount{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// RangeSummary groups the user's transactions dated within
// [startDate, endDate] (inclusive; lexicographic comparison is safe on
// fixed-width ISO dates) by category id or account id.
func (r *Reporter) RangeSummary(ctx context.Context, sess core.Session, groupBy GroupBy, startDate, endDate string) (map[string]Totals, error) {
	if groupBy != GroupByCategory && groupBy != GroupByAccount {
		return nil, core.NewValidationError("groupBy", "must be category or account")
	}
	if !core.ValidDate(startDate) {
		return nil, core.NewValidationError("startDate", "must be a YYYY-MM-DD calendar date")
	}
	if !core.ValidDate(endDate) {
		return nil, core.NewValidationError("endDate", "must be a YYYY-MM-DD calendar date")
	}

	transactions, err := r.transactions(ctx, sess)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]Totals)
	for _, tx := range transactions {
		if tx.Date < startDate || tx.Date > endDate {
			continue
		}
		key := tx.Category
		if groupBy == GroupByAccount {
			key = tx.AccountID
		}
		totals := summary[key]
		if tx.Type == core.TypeIncome {
			totals.Income = totals.Income.Add(tx.Amount)
		} else {
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
		summary[key] = totals
	}
	return summary, nil
}

// TotalBalance sums the user's account balances.
func (r *Reporter) TotalBalance(ctx context.Context, sess core.Session) (decimal.Decimal, error) {
	accounts, err := storage.LoadAll[core.Account](ctx, r.store, storage.CollectionAccounts)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range storage.QueryByUser(accounts, sess.UserID) {
		total = total.Add(a.Balance)
	}
	return total, nil
}

// MonthStats sums the current month's income and expenses.
func (r *Reporter) MonthStats(ctx context.Context, sess core.Session) (MonthStats, error) {
	transactions, err := r.transactions(ctx, sess)
	if err != nil {
		return MonthStats{}, err
	}

	month := r.now().Format("2006-01")
	stats := MonthStats{Month: month, Income: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range transactions {
		if core.MonthOf(tx.Date) != month {
			continue
		}
		if tx.Type == core.TypeIncome {
			stats.Income = stats.Income.Add(tx.Amount)
		} else {
			stats.Expenses = stats.Expenses.Add(tx.Amount)
		}
	}
	stats.Net = stats.Income.Sub(stats.Expenses)
	return stats, nil
}

// NameResolver maps group keys (category or account ids) to display
// names for report rendering and CSV export.
func (r *Reporter) NameResolver(ctx context.Context, sess core.Session, groupBy GroupBy) (func(string) string, error) {
	names := make(map[string]string)
	switch groupBy {
	case GroupByAccount:
		accounts, err := storage.LoadAll[core.Account](ctx, r.store, storage.CollectionAccounts)
		if err != nil {
			return nil, err
		}
		for _, a := range storage.QueryByUser(accounts, sess.UserID) {
			names[a.ID] = a.Name
		}
	default:
		categories, err := storage.LoadAll[core.Category](ctx, r.store, storage.CollectionCategories)
		if err != nil {
			return nil, err
		}
		for _, c := range storage.QueryByUser(categories, sess.UserID) {
			names[c.ID] = c.Name
		}
	}
	return func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return otherCategory
	}, nil
}
