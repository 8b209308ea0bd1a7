// Package ledger implements validated mutations over the record store:
// create and delete for accounts, transactions, categories and budgets,
// plus the budget accrual applied on every transaction insert.
//
// Every operation takes an explicit session; there is no ambient current
// user. Mutations are serialized by a single mutex because each one is a
// read-modify-write over a whole collection.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"wallet/internal/amqp"
	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/storage"

	"github.com/google/uuid"
)

// Service is the ledger mutation service.
type Service struct {
	store  storage.Store
	events *amqp.Client
	logger *log.Logger

	// mu makes each read-modify-write over the store atomic with respect
	// to other mutations in this process (single-writer queue).
	mu sync.Mutex
}

// NewService builds a Service. events may be nil, in which case ledger
// events are not published.
func NewService(store storage.Store, events *amqp.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// AddAccount validates and persists a new account for the session user.
func (s *Service) AddAccount(ctx context.Context, sess core.Session, in core.NewAccount) (core.Account, error) {
	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := storage.LoadAll[core.Account](ctx, s.store, storage.CollectionAccounts)
	if err != nil {
		return core.Account{}, err
	}

	account := core.Account{
		ID:       uuid.NewString(),
		UserID:   sess.UserID,
		Name:     in.Name,
		Type:     in.Type,
		Balance:  in.Balance,
		Currency: in.Currency,
	}
	accounts = append(accounts, account)

	if err := storage.SaveAll(ctx, s.store, storage.CollectionAccounts, accounts); err != nil {
		return core.Account{}, err
	}

	s.logger.InfoContext(ctx, "Account created",
		log.FieldUserID, sess.UserID,
		log.FieldAccountID, account.ID)
	return account, nil
}

// DeleteAccount removes an account. Transactions referencing it are kept;
// their account lookups resolve to no match for display purposes.
func (s *Service) DeleteAccount(ctx context.Context, sess core.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := storage.LoadAll[core.Account](ctx, s.store, storage.CollectionAccounts)
	if err != nil {
		return err
	}

	kept := accounts[:0]
	found := false
	for _, a := range accounts {
		if a.ID == id && a.UserID == sess.UserID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return &core.NotFoundError{Resource: "account", ID: id}
	}

	if err := storage.SaveAll(ctx, s.store, storage.CollectionAccounts, kept); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Account deleted",
		log.FieldUserID, sess.UserID,
		log.FieldAccountID, id)
	return nil
}

// AddTransaction validates and persists a transaction, adjusts the owning
// account's balance and accrues the matching budget. The returned boolean
// is the over-budget advisory: the transaction is never rejected for
// exceeding a budget.
func (s *Service) AddTransaction(ctx context.Context, sess core.Session, in core.NewTransaction) (core.Transaction, bool, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := storage.LoadAll[core.Account](ctx, s.store, storage.CollectionAccounts)
	if err != nil {
		return core.Transaction{}, false, err
	}
	accountIdx := -1
	for i, a := range accounts {
		if a.ID == in.AccountID && a.UserID == sess.UserID {
			accountIdx = i
			break
		}
	}
	if accountIdx < 0 {
		return core.Transaction{}, false, core.NewValidationError("accountId", "does not reference an existing account")
	}

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return core.Transaction{}, false, err
	}
	var category *core.Category
	for i := range categories {
		if categories[i].ID == in.Category && categories[i].UserID == sess.UserID {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		return core.Transaction{}, false, core.NewValidationError("category", "does not reference an existing category")
	}
	if in.SubCategory != "" && !category.HasSubCategory(in.SubCategory) {
		return core.Transaction{}, false, core.NewValidationError("subCategory", "does not belong to the category")
	}

	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      sess.UserID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		AccountID:   in.AccountID,
		Date:        in.Date,
	}

	transactions, err := storage.LoadAll[core.Transaction](ctx, s.store, storage.CollectionTransactions)
	if err != nil {
		return core.Transaction{}, false, err
	}
	transactions = append(transactions, tx)
	if err := storage.SaveAll(ctx, s.store, storage.CollectionTransactions, transactions); err != nil {
		return core.Transaction{}, false, err
	}

	delta := tx.Amount
	if tx.Type == core.TypeExpense {
		delta = delta.Neg()
	}
	accounts[accountIdx].Balance = accounts[accountIdx].Balance.Add(delta)
	if err := storage.SaveAll(ctx, s.store, storage.CollectionAccounts, accounts); err != nil {
		return core.Transaction{}, false, fmt.Errorf("update account balance: %w", err)
	}

	budget, over, err := s.accrue(ctx, tx)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("accrue budget: %w", err)
	}

	month := core.MonthOf(tx.Date)
	s.publish(ctx, amqp.NewTransactionRecorded(sess.UserID, tx.ID, month))
	if over {
		s.publish(ctx, amqp.NewBudgetExceeded(sess.UserID, budget.ID, budget.CategoryID, month))
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldUserID, sess.UserID,
		log.FieldTransactionID, tx.ID,
		log.FieldAccountID, tx.AccountID,
		log.FieldAmount, tx.Amount.String(),
		"over_budget", over)
	return tx, over, nil
}

// DeleteTransaction removes a transaction and reverses its effect on the
// owning account's balance, so the balance stays derivable from the
// ledger. The budget accumulator is deliberately left untouched; spent
// only ever grows within a month.
func (s *Service) DeleteTransaction(ctx context.Context, sess core.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := storage.LoadAll[core.Transaction](ctx, s.store, storage.CollectionTransactions)
	if err != nil {
		return err
	}

	var deleted *core.Transaction
	kept := transactions[:0]
	for i := range transactions {
		if transactions[i].ID == id && transactions[i].UserID == sess.UserID {
			tx := transactions[i]
			deleted = &tx
			continue
		}
		kept = append(kept, transactions[i])
	}
	if deleted == nil {
		return &core.NotFoundError{Resource: "transaction", ID: id}
	}

	if err := storage.SaveAll(ctx, s.store, storage.CollectionTransactions, kept); err != nil {
		return err
	}

	// Reverse the balance delta. The account may itself have been deleted;
	// that is not an error.
	accounts, err := storage.LoadAll[core.Account](ctx, s.store, storage.CollectionAccounts)
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].ID == deleted.AccountID && accounts[i].UserID == sess.UserID {
			delta := deleted.Amount
			if deleted.Type == core.TypeIncome {
				delta = delta.Neg()
			}
			accounts[i].Balance = accounts[i].Balance.Add(delta)
			if err := storage.SaveAll(ctx, s.store, storage.CollectionAccounts, accounts); err != nil {
				return fmt.Errorf("reverse account balance: %w", err)
			}
			break
		}
	}

	s.publish(ctx, amqp.NewTransactionDeleted(sess.UserID, id, core.MonthOf(deleted.Date)))

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, sess.UserID,
		log.FieldTransactionID, id)
	return nil
}

// AddCategory creates a category with an empty subcategory set.
func (s *Service) AddCategory(ctx context.Context, sess core.Session, name string) (core.Category, error) {
	if isBlank(name) {
		return core.Category{}, core.NewValidationError("name", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return core.Category{}, err
	}

	category := core.Category{
		ID:            uuid.NewString(),
		UserID:        sess.UserID,
		Name:          name,
		SubCategories: []string{},
	}
	categories = append(categories, category)

	if err := storage.SaveAll(ctx, s.store, storage.CollectionCategories, categories); err != nil {
		return core.Category{}, err
	}

	s.logger.InfoContext(ctx, "Category created",
		log.FieldUserID, sess.UserID,
		log.FieldCategoryID, category.ID)
	return category, nil
}

// DeleteCategory removes a category without cascading: transactions that
// reference it keep their id and fall into the "Other" reporting bucket.
func (s *Service) DeleteCategory(ctx context.Context, sess core.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return err
	}

	kept := categories[:0]
	found := false
	for _, c := range categories {
		if c.ID == id && c.UserID == sess.UserID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return &core.NotFoundError{Resource: "category", ID: id}
	}

	return storage.SaveAll(ctx, s.store, storage.CollectionCategories, kept)
}

// AddSubCategory appends a subcategory name. Exact duplicates within the
// same category are rejected.
func (s *Service) AddSubCategory(ctx context.Context, sess core.Session, categoryID, name string) (core.Category, error) {
	if isBlank(name) {
		return core.Category{}, core.NewValidationError("name", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return core.Category{}, err
	}

	for i := range categories {
		c := &categories[i]
		if c.ID != categoryID || c.UserID != sess.UserID {
			continue
		}
		if c.HasSubCategory(name) {
			return core.Category{}, &core.DuplicateError{Resource: "subcategory", Key: name}
		}
		c.SubCategories = append(c.SubCategories, name)
		if err := storage.SaveAll(ctx, s.store, storage.CollectionCategories, categories); err != nil {
			return core.Category{}, err
		}
		return *c, nil
	}

	return core.Category{}, core.NewValidationError("categoryId", "does not reference an existing category")
}

// DeleteSubCategory removes a subcategory by position. Later positions
// shift down, so callers must not reuse indices across a delete.
func (s *Service) DeleteSubCategory(ctx context.Context, sess core.Session, categoryID string, index int) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return core.Category{}, err
	}

	for i := range categories {
		c := &categories[i]
		if c.ID != categoryID || c.UserID != sess.UserID {
			continue
		}
		if index < 0 || index >= len(c.SubCategories) {
			return core.Category{}, core.NewValidationError("index", "out of range")
		}
		c.SubCategories = append(c.SubCategories[:index], c.SubCategories[index+1:]...)
		if err := storage.SaveAll(ctx, s.store, storage.CollectionCategories, categories); err != nil {
			return core.Category{}, err
		}
		return *c, nil
	}

	return core.Category{}, &core.NotFoundError{Resource: "category", ID: categoryID}
}

// AddBudget creates a monthly spending limit for a category. At most one
// budget may exist per (user, category, month).
func (s *Service) AddBudget(ctx context.Context, sess core.Session, in core.NewBudget) (core.Budget, error) {
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return core.Budget{}, err
	}
	resolved := false
	for _, c := range categories {
		if c.ID == in.CategoryID && c.UserID == sess.UserID {
			resolved = true
			break
		}
	}
	if !resolved {
		return core.Budget{}, core.NewValidationError("categoryId", "does not reference an existing category")
	}

	budgets, err := storage.LoadAll[core.Budget](ctx, s.store, storage.CollectionBudgets)
	if err != nil {
		return core.Budget{}, err
	}
	for _, b := range budgets {
		if b.UserID == sess.UserID && b.CategoryID == in.CategoryID && b.Month == in.Month {
			return core.Budget{}, &core.DuplicateError{
				Resource: "budget",
				Key:      fmt.Sprintf("category %s in %s", in.CategoryID, in.Month),
			}
		}
	}

	budget := core.Budget{
		ID:         uuid.NewString(),
		UserID:     sess.UserID,
		Month:      in.Month,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
	}
	budgets = append(budgets, budget)

	if err := storage.SaveAll(ctx, s.store, storage.CollectionBudgets, budgets); err != nil {
		return core.Budget{}, err
	}

	s.logger.InfoContext(ctx, "Budget created",
		log.FieldUserID, sess.UserID,
		log.FieldBudgetID, budget.ID,
		log.FieldMonth, budget.Month)
	return budget, nil
}

// DeleteBudget removes a budget.
func (s *Service) DeleteBudget(ctx context.Context, sess core.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets, err := storage.LoadAll[core.Budget](ctx, s.store, storage.CollectionBudgets)
	if err != nil {
		return err
	}

	kept := budgets[:0]
	found := false
	for _, b := range budgets {
		if b.ID == id && b.UserID == sess.UserID {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return &core.NotFoundError{Resource: "budget", ID: id}
	}

	return storage.SaveAll(ctx, s.store, storage.CollectionBudgets, kept)
}

// ListAccounts returns the session user's accounts in insertion order.
func (s *Service) ListAccounts(ctx context.Context, sess core.Session) ([]core.Account, error) {
	accounts, err := storage.LoadAll[core.Account](ctx, s.store, storage.CollectionAccounts)
	if err != nil {
		return nil, err
	}
	return storage.QueryByUser(accounts, sess.UserID), nil
}

// ListTransactions returns the session user's transactions, most recent
// date first. Sorting is a presentation convention applied here, not a
// storage invariant.
func (s *Service) ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	transactions, err := storage.LoadAll[core.Transaction](ctx, s.store, storage.CollectionTransactions)
	if err != nil {
		return nil, err
	}
	mine := storage.QueryByUser(transactions, sess.UserID)
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Date > mine[j].Date
	})
	return mine, nil
}

// ListCategories returns the session user's categories in insertion order.
func (s *Service) ListCategories(ctx context.Context, sess core.Session) ([]core.Category, error) {
	categories, err := storage.LoadAll[core.Category](ctx, s.store, storage.CollectionCategories)
	if err != nil {
		return nil, err
	}
	return storage.QueryByUser(categories, sess.UserID), nil
}

// ListBudgets returns the session user's budgets, restricted to one month
// when month is non-empty.
func (s *Service) ListBudgets(ctx context.Context, sess core.Session, month string) ([]core.Budget, error) {
	budgets, err := storage.LoadAll[core.Budget](ctx, s.store, storage.CollectionBudgets)
	if err != nil {
		return nil, err
	}
	mine := storage.QueryByUser(budgets, sess.UserID)
	if month == "" {
		return mine, nil
	}
	filtered := mine[:0]
	for _, b := range mine {
		if b.Month == month {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *Service) publish(ctx context.Context, msg *amqp.LedgerEventMessage) {
	if s.events == nil {
		return
	}
	// Publish failures never fail the mutation; the record is saved.
	if err := s.events.PublishEvent(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldError, err,
			"kind", msg.Kind)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
