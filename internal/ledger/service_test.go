package ledger

import (
	"context"
	"testing"

	"wallet/internal/core"
	"wallet/internal/storage"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (*Service, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	return NewService(store, nil, nil), store
}

func seedAccount(t *testing.T, s *Service, sess core.Session, name string, balance int64) core.Account {
	t.Helper()
	a, err := s.AddAccount(context.Background(), sess, core.NewAccount{
		Name:     name,
		Type:     core.AccountCash,
		Balance:  decimal.NewFromInt(balance),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func seedCategory(t *testing.T, s *Service, sess core.Session, name string) core.Category {
	t.Helper()
	c, err := s.AddCategory(context.Background(), sess, name)
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func getAccount(t *testing.T, s *Service, sess core.Session, id string) core.Account {
	t.Helper()
	accounts, err := s.ListAccounts(context.Background(), sess)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	for _, a := range accounts {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("account %s not found", id)
	return core.Account{}
}

func getBudget(t *testing.T, s *Service, sess core.Session, id string) core.Budget {
	t.Helper()
	budgets, err := s.ListBudgets(context.Background(), sess, "")
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	for _, b := range budgets {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("budget %s not found", id)
	return core.Budget{}
}

var sess = core.Session{UserID: "u1", Name: "Ada", Email: "ada@example.com"}

func TestBudgetTrackingScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	cash := seedAccount(t, s, sess, "Cash", 100)
	food := seedCategory(t, s, sess, "Food")

	budget, err := s.AddBudget(ctx, sess, core.NewBudget{
		CategoryID: food.ID,
		Month:      "2024-06",
		Amount:     decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("add budget: %v", err)
	}

	_, over, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type:        core.TypeExpense,
		Amount:      decimal.NewFromInt(30),
		Description: "groceries",
		Category:    food.ID,
		AccountID:   cash.ID,
		Date:        "2024-06-05",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if over {
		t.Fatal("30 of 50 must not be over budget")
	}
	if got := getAccount(t, s, sess, cash.ID).Balance; !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("balance = %s, want 70", got)
	}
	if got := getBudget(t, s, sess, budget.ID).Spent; !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("spent = %s, want 30", got)
	}

	_, over, err = s.AddTransaction(ctx, sess, core.NewTransaction{
		Type:        core.TypeExpense,
		Amount:      decimal.NewFromInt(25),
		Description: "restaurant",
		Category:    food.ID,
		AccountID:   cash.ID,
		Date:        "2024-06-20",
	})
	if err != nil {
		t.Fatalf("second transaction: %v", err)
	}
	if !over {
		t.Fatal("55 of 50 must be over budget")
	}
	if got := getAccount(t, s, sess, cash.ID).Balance; !got.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("balance = %s, want 45", got)
	}
	if got := getBudget(t, s, sess, budget.ID).Spent; !got.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("spent = %s, want 55", got)
	}
}

func TestAddTransactionBalanceDelta(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Bank", 100)
	cat := seedCategory(t, s, sess, "Salary")

	cases := []struct {
		name   string
		txType core.TransactionType
		amount int64
		want   int64
	}{
		{"income adds", core.TypeIncome, 40, 140},
		{"expense subtracts", core.TypeExpense, 15, 125},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
				Type:        tc.txType,
				Amount:      decimal.NewFromInt(tc.amount),
				Description: "x",
				Category:    cat.ID,
				AccountID:   acc.ID,
				Date:        "2024-06-01",
			})
			if err != nil {
				t.Fatalf("add transaction: %v", err)
			}
			if got := getAccount(t, s, sess, acc.ID).Balance; !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("balance = %s, want %d", got, tc.want)
			}
		})
	}
}

func TestAccrualSumsQualifyingInserts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 1000)
	cat := seedCategory(t, s, sess, "Food")

	budget, err := s.AddBudget(ctx, sess, core.NewBudget{
		CategoryID: cat.ID, Month: "2024-06", Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("add budget: %v", err)
	}

	amounts := []string{"12.50", "7.25", "100", "0.01"}
	for _, a := range amounts {
		amount, _ := decimal.NewFromString(a)
		if _, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
			Type: core.TypeExpense, Amount: amount, Description: "x",
			Category: cat.ID, AccountID: acc.ID, Date: "2024-06-10",
		}); err != nil {
			t.Fatalf("add transaction %s: %v", a, err)
		}
	}

	want, _ := decimal.NewFromString("119.76")
	if got := getBudget(t, s, sess, budget.ID).Spent; !got.Equal(want) {
		t.Fatalf("spent = %s, want %s", got, want)
	}
}

func TestAccrualIgnoresOtherMonthsAndCategories(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 1000)
	food := seedCategory(t, s, sess, "Food")
	rent := seedCategory(t, s, sess, "Rent")

	budget, err := s.AddBudget(ctx, sess, core.NewBudget{
		CategoryID: food.ID, Month: "2024-06", Amount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("add budget: %v", err)
	}

	// Different category, same month.
	if _, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(10), Description: "x",
		Category: rent.ID, AccountID: acc.ID, Date: "2024-06-01",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Same category, different month.
	if _, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(10), Description: "x",
		Category: food.ID, AccountID: acc.ID, Date: "2024-07-01",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := getBudget(t, s, sess, budget.ID).Spent; !got.IsZero() {
		t.Fatalf("spent = %s, want 0", got)
	}
}

func TestAddTransactionWithoutBudgetIsUntracked(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Misc")

	_, over, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(99), Description: "x",
		Category: cat.ID, AccountID: acc.ID, Date: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if over {
		t.Fatal("no budget means never over budget")
	}
}

func TestAddTransactionValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Food")

	valid := core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(10), Description: "x",
		Category: cat.ID, AccountID: acc.ID, Date: "2024-06-01",
	}

	cases := []struct {
		name   string
		mutate func(*core.NewTransaction)
	}{
		{"unknown account", func(in *core.NewTransaction) { in.AccountID = "nope" }},
		{"unknown category", func(in *core.NewTransaction) { in.Category = "nope" }},
		{"unknown subcategory", func(in *core.NewTransaction) { in.SubCategory = "Takeout" }},
		{"non-positive amount", func(in *core.NewTransaction) { in.Amount = decimal.Zero }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, _, err := s.AddTransaction(ctx, sess, in)
			if err == nil {
				t.Fatal("expected error")
			}
			if !core.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// A failed insert must not have written anything.
	txs, err := s.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after failed inserts, got %d", len(txs))
	}
	if got := getAccount(t, s, sess, acc.ID).Balance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed by failed insert: %s", got)
	}
}

func TestAddTransactionOtherUsersRecordsDoNotResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	other := core.Session{UserID: "u2"}

	theirAccount := seedAccount(t, s, other, "Their cash", 100)
	theirCategory := seedCategory(t, s, other, "Their food")

	_, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(10), Description: "x",
		Category: theirCategory.ID, AccountID: theirAccount.ID, Date: "2024-06-01",
	})
	if !core.IsValidation(err) {
		t.Fatalf("cross-user references must not resolve, got %v", err)
	}
}

func TestDeleteTransactionReversesBalanceKeepsSpent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Food")
	budget, err := s.AddBudget(ctx, sess, core.NewBudget{
		CategoryID: cat.ID, Month: "2024-06", Amount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("add budget: %v", err)
	}

	tx, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(30), Description: "x",
		Category: cat.ID, AccountID: acc.ID, Date: "2024-06-05",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if err := s.DeleteTransaction(ctx, sess, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}

	if got := getAccount(t, s, sess, acc.ID).Balance; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100 after reversal", got)
	}
	// The accumulator is monotonic within a month: deletion does not
	// give the budget its headroom back.
	if got := getBudget(t, s, sess, budget.ID).Spent; !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("spent = %s, want 30 after delete", got)
	}

	txs, _ := s.ListTransactions(ctx, sess)
	if len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
}

func TestDeleteTransactionAccountGone(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Food")

	tx, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeIncome, Amount: decimal.NewFromInt(10), Description: "x",
		Category: cat.ID, AccountID: acc.ID, Date: "2024-06-05",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if err := s.DeleteAccount(ctx, sess, acc.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	// Orphaned reference: delete still succeeds, nothing to reverse.
	if err := s.DeleteTransaction(ctx, sess, tx.ID); err != nil {
		t.Fatalf("delete transaction with deleted account: %v", err)
	}
}

func TestDeleteMissingTargets(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	if err := s.DeleteAccount(ctx, sess, "nope"); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, sess, "nope"); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.DeleteCategory(ctx, sess, "nope"); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.DeleteBudget(ctx, sess, "nope"); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteAccountDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Food")

	if _, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
		Type: core.TypeExpense, Amount: decimal.NewFromInt(10), Description: "x",
		Category: cat.ID, AccountID: acc.ID, Date: "2024-06-01",
	}); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if err := s.DeleteAccount(ctx, sess, acc.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	txs, err := s.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions referencing a deleted account must remain, got %d", len(txs))
	}
}

func TestAddBudgetDuplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	cat := seedCategory(t, s, sess, "Food")

	in := core.NewBudget{CategoryID: cat.ID, Month: "2024-06", Amount: decimal.NewFromInt(50)}
	if _, err := s.AddBudget(ctx, sess, in); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := s.AddBudget(ctx, sess, in); !core.IsDuplicate(err) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}

	budgets, err := s.ListBudgets(ctx, sess, "2024-06")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("stored budget count = %d, want 1", len(budgets))
	}

	t.Run("another month is fine", func(t *testing.T) {
		in := core.NewBudget{CategoryID: cat.ID, Month: "2024-07", Amount: decimal.NewFromInt(50)}
		if _, err := s.AddBudget(ctx, sess, in); err != nil {
			t.Fatalf("different month rejected: %v", err)
		}
	})
}

func TestAddBudgetUnresolvedCategory(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.AddBudget(context.Background(), sess, core.NewBudget{
		CategoryID: "nope", Month: "2024-06", Amount: decimal.NewFromInt(50),
	})
	if !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSubCategories(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	cat := seedCategory(t, s, sess, "Food")

	if _, err := s.AddSubCategory(ctx, sess, cat.ID, "Groceries"); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.AddSubCategory(ctx, sess, cat.ID, "Takeout")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(got.SubCategories) != 2 || got.SubCategories[0] != "Groceries" {
		t.Fatalf("subcategories = %v, want insertion order kept", got.SubCategories)
	}

	t.Run("duplicate rejected", func(t *testing.T) {
		if _, err := s.AddSubCategory(ctx, sess, cat.ID, "Takeout"); !core.IsDuplicate(err) {
			t.Fatalf("expected DuplicateError, got %v", err)
		}
	})

	t.Run("blank rejected", func(t *testing.T) {
		if _, err := s.AddSubCategory(ctx, sess, cat.ID, "  "); !core.IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unresolved category", func(t *testing.T) {
		if _, err := s.AddSubCategory(ctx, sess, "nope", "X"); !core.IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("delete shifts positions", func(t *testing.T) {
		got, err := s.DeleteSubCategory(ctx, sess, cat.ID, 0)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(got.SubCategories) != 1 || got.SubCategories[0] != "Takeout" {
			t.Fatalf("subcategories = %v, want [Takeout]", got.SubCategories)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		if _, err := s.DeleteSubCategory(ctx, sess, cat.ID, 5); !core.IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestAddCategoryBlankName(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.AddCategory(context.Background(), sess, "  "); !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestListTransactionsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	acc := seedAccount(t, s, sess, "Cash", 100)
	cat := seedCategory(t, s, sess, "Food")

	for _, date := range []string{"2024-06-05", "2024-06-20", "2024-06-01"} {
		if _, _, err := s.AddTransaction(ctx, sess, core.NewTransaction{
			Type: core.TypeExpense, Amount: decimal.NewFromInt(1), Description: date,
			Category: cat.ID, AccountID: acc.ID, Date: date,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	txs, err := s.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2024-06-20", "2024-06-05", "2024-06-01"}
	for i, w := range want {
		if txs[i].Date != w {
			t.Fatalf("position %d: date = %s, want %s", i, txs[i].Date, w)
		}
	}
}
