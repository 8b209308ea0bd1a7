// Package core holds the ledger's entities and their validation rules.
//
// Every entity is owned by exactly one user. Ownership is an attribute,
// not a storage partition, so every query must filter by user id.
package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountBank        AccountType = "bank"
	AccountMobileMoney AccountType = "mobile_money"
	AccountCash        AccountType = "cash"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type (
	AccountType     string
	TransactionType string

	Account struct {
		ID       string          `json:"id"`
		UserID   string          `json:"userId"`
		Name     string          `json:"name"`
		Type     AccountType     `json:"type"`
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}

	// NewAccount is the caller-supplied part of an Account.
	NewAccount struct {
		Name     string          `json:"name"`
		Type     AccountType     `json:"type"`
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		SubCategory string          `json:"subCategory,omitempty"`
		AccountID   string          `json:"accountId"`
		Date        string          `json:"date"` // YYYY-MM-DD
	}

	NewTransaction struct {
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		SubCategory string          `json:"subCategory,omitempty"`
		AccountID   string          `json:"accountId"`
		Date        string          `json:"date"`
	}

	Category struct {
		ID            string   `json:"id"`
		UserID        string   `json:"userId"`
		Name          string   `json:"name"`
		SubCategories []string `json:"subCategories"`
	}

	Budget struct {
		ID         string          `json:"id"`
		UserID     string          `json:"userId"`
		Month      string          `json:"month"` // YYYY-MM
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Spent      decimal.Decimal `json:"spent"`
	}

	NewBudget struct {
		Month      string          `json:"month"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
	}

	User struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"password"`
	}

	// Session identifies the user on whose behalf an operation runs.
	// There is no ambient current user; callers pass this explicitly.
	Session struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}
)

// Owner implements storage.Owned.
func (a Account) Owner() string     { return a.UserID }
func (t Transaction) Owner() string { return t.UserID }
func (c Category) Owner() string    { return c.UserID }
func (b Budget) Owner() string      { return b.UserID }

func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountMobileMoney, AccountCash:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil && len(s) == 10
}

// ValidMonth reports whether s is a calendar month in YYYY-MM form.
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil && len(s) == 7
}

// MonthOf returns the YYYY-MM prefix of a YYYY-MM-DD date.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func (a NewAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if !a.Type.Valid() {
		return NewValidationError("type", "must be bank, mobile_money or cash")
	}
	if strings.TrimSpace(a.Currency) == "" {
		return NewValidationError("currency", "must not be empty")
	}
	return nil
}

func (t NewTransaction) Validate() error {
	if !t.Type.Valid() {
		return NewValidationError("type", "must be income or expense")
	}
	if !t.Amount.IsPositive() {
		return NewValidationError("amount", "must be positive")
	}
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "must not be empty")
	}
	if t.Category == "" {
		return NewValidationError("category", "is required")
	}
	if t.AccountID == "" {
		return NewValidationError("accountId", "is required")
	}
	if !ValidDate(t.Date) {
		return NewValidationError("date", "must be a YYYY-MM-DD calendar date")
	}
	return nil
}

func (b NewBudget) Validate() error {
	if b.CategoryID == "" {
		return NewValidationError("categoryId", "is required")
	}
	if !ValidMonth(b.Month) {
		return NewValidationError("month", "must be a YYYY-MM calendar month")
	}
	if !b.Amount.IsPositive() {
		return NewValidationError("amount", "must be positive")
	}
	return nil
}

// HasSubCategory reports whether name is in the category's subcategory set.
func (c Category) HasSubCategory(name string) bool {
	for _, s := range c.SubCategories {
		if s == name {
			return true
		}
	}
	return false
}
