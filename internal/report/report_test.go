package report

import (
	"context"
	"reflect"
	"testing"
	"time"

	"wallet/internal/core"
	"wallet/internal/storage"

	"github.com/shopspring/decimal"
)

var sess = core.Session{UserID: "u1"}

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

func seed(t *testing.T, store *storage.Memory, transactions []core.Transaction, categories []core.Category, accounts []core.Account) {
	t.Helper()
	ctx := context.Background()
	if err := storage.SaveAll(ctx, store, storage.CollectionTransactions, transactions); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}
	if err := storage.SaveAll(ctx, store, storage.CollectionCategories, categories); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	if err := storage.SaveAll(ctx, store, storage.CollectionAccounts, accounts); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
}

func tx(id, txType, category, account, date string, amount int64) core.Transaction {
	return core.Transaction{
		ID: id, UserID: "u1", Type: core.TransactionType(txType),
		Amount: decimal.NewFromInt(amount), Description: id,
		Category: category, AccountID: account, Date: date,
	}
}

func TestMonthlySeriesWindow(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "income", "c1", "a1", "2024-06-01", 100),
		tx("t2", "expense", "c1", "a1", "2024-06-10", 40),
		tx("t3", "expense", "c1", "a1", "2024-04-10", 7),
		tx("t4", "income", "c1", "a1", "2023-12-01", 999), // outside window
	}, nil, nil)

	r := NewReporter(store).WithClock(fixedClock(2024, time.June))
	series, err := r.MonthlySeries(ctx, sess, 6)
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	wantMonths := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}
	if !reflect.DeepEqual(series.Months, wantMonths) {
		t.Fatalf("months = %v, want %v", series.Months, wantMonths)
	}
	if len(series.Income) != 6 || len(series.Expenses) != 6 {
		t.Fatalf("parallel sequences must have 6 entries, got %d/%d", len(series.Income), len(series.Expenses))
	}
	// Empty months are zero-filled.
	if !series.Income[0].IsZero() || !series.Expenses[0].IsZero() {
		t.Fatalf("2024-01 must be zero, got %s/%s", series.Income[0], series.Expenses[0])
	}
	if !series.Expenses[3].Equal(decimal.NewFromInt(7)) {
		t.Fatalf("2024-04 expenses = %s, want 7", series.Expenses[3])
	}
	if !series.Income[5].Equal(decimal.NewFromInt(100)) || !series.Expenses[5].Equal(decimal.NewFromInt(40)) {
		t.Fatalf("2024-06 = %s/%s, want 100/40", series.Income[5], series.Expenses[5])
	}
}

func TestMonthlySeriesYearBoundary(t *testing.T) {
	store := storage.NewMemory()
	r := NewReporter(store).WithClock(fixedClock(2024, time.February))
	series, err := r.MonthlySeries(context.Background(), sess, 6)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	want := []string{"2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"}
	if !reflect.DeepEqual(series.Months, want) {
		t.Fatalf("months = %v, want %v", series.Months, want)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "expense", "c-food", "a1", "2024-06-01", 30),
		tx("t2", "expense", "c-food", "a1", "2024-06-02", 20),
		tx("t3", "expense", "c-gone", "a1", "2024-06-03", 5),
		tx("t4", "income", "c-food", "a1", "2024-06-04", 999), // income excluded
	}, []core.Category{
		{ID: "c-food", UserID: "u1", Name: "Food"},
	}, nil)

	got, err := NewReporter(store).CategoryBreakdown(ctx, sess)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	want := []CategoryAmount{
		{Name: "Food", Value: decimal.NewFromInt(50)},
		{Name: "Other", Value: decimal.NewFromInt(5)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Name != want[i].Name || !got[i].Value.Equal(want[i].Value) {
			t.Fatalf("group %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	store := storage.NewMemory()
	got, err := NewReporter(store).CategoryBreakdown(context.Background(), sess)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty ledger must yield empty breakdown, got %+v", got)
	}
}

func TestRangeSummaryInclusiveBounds(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "expense", "c1", "a1", "2024-06-01", 10), // on start bound
		tx("t2", "income", "c1", "a1", "2024-06-15", 100),
		tx("t3", "expense", "c1", "a1", "2024-06-30", 20), // on end bound
		tx("t4", "expense", "c1", "a1", "2024-05-31", 999),
		tx("t5", "expense", "c1", "a1", "2024-07-01", 999),
	}, nil, nil)

	summary, err := NewReporter(store).RangeSummary(ctx, sess, GroupByCategory, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	totals, ok := summary["c1"]
	if !ok {
		t.Fatalf("missing group c1: %+v", summary)
	}
	if !totals.Income.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income = %s, want 100", totals.Income)
	}
	if !totals.Expense.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expense = %s, want 30", totals.Expense)
	}
	if !totals.Net().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("net = %s, want 70", totals.Net())
	}
}

func TestRangeSummaryGroupByAccount(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "expense", "c1", "a1", "2024-06-01", 10),
		tx("t2", "expense", "c1", "a2", "2024-06-01", 20),
	}, nil, nil)

	summary, err := NewReporter(store).RangeSummary(ctx, sess, GroupByAccount, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("got %d groups, want 2", len(summary))
	}
	if !summary["a2"].Expense.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("a2 expense = %s, want 20", summary["a2"].Expense)
	}
}

func TestRangeSummaryIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "expense", "c1", "a1", "2024-06-01", 10),
		tx("t2", "income", "c2", "a1", "2024-06-02", 5),
	}, nil, nil)

	r := NewReporter(store)
	first, err := r.RangeSummary(ctx, sess, GroupByCategory, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	second, err := r.RangeSummary(ctx, sess, GroupByCategory, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs yielded different output:\n%+v\n%+v", first, second)
	}
}

func TestRangeSummaryValidation(t *testing.T) {
	store := storage.NewMemory()
	r := NewReporter(store)
	if _, err := r.RangeSummary(context.Background(), sess, "color", "2024-06-01", "2024-06-30"); !core.IsValidation(err) {
		t.Fatalf("bad groupBy: got %v", err)
	}
	if _, err := r.RangeSummary(context.Background(), sess, GroupByCategory, "June 1", "2024-06-30"); !core.IsValidation(err) {
		t.Fatalf("bad start date: got %v", err)
	}
}

func TestTotalBalanceAndMonthStats(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	seed(t, store, []core.Transaction{
		tx("t1", "income", "c1", "a1", "2024-06-01", 100),
		tx("t2", "expense", "c1", "a1", "2024-06-02", 30),
		tx("t3", "expense", "c1", "a1", "2024-05-02", 999), // previous month
	}, nil, []core.Account{
		{ID: "a1", UserID: "u1", Name: "Cash", Type: core.AccountCash, Balance: decimal.NewFromInt(70), Currency: "USD"},
		{ID: "a2", UserID: "u1", Name: "Bank", Type: core.AccountBank, Balance: decimal.NewFromInt(-20), Currency: "USD"},
		{ID: "a3", UserID: "u2", Name: "Not mine", Type: core.AccountBank, Balance: decimal.NewFromInt(5000), Currency: "USD"},
	})

	r := NewReporter(store).WithClock(fixedClock(2024, time.June))

	balance, err := r.TotalBalance(ctx, sess)
	if err != nil {
		t.Fatalf("total balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, want 50", balance)
	}

	stats, err := r.MonthStats(ctx, sess)
	if err != nil {
		t.Fatalf("month stats: %v", err)
	}
	if stats.Month != "2024-06" {
		t.Fatalf("month = %s, want 2024-06", stats.Month)
	}
	if !stats.Income.Equal(decimal.NewFromInt(100)) || !stats.Expenses.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("stats = %s/%s, want 100/30", stats.Income, stats.Expenses)
	}
	if !stats.Net.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("net = %s, want 70", stats.Net)
	}
}
