package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger events queue.
const (
	KindTransactionRecorded = "transaction.recorded"
	KindTransactionDeleted  = "transaction.deleted"
	KindBudgetExceeded      = "budget.exceeded"
)

// LedgerEventMessage is the envelope for ledger events. It carries ids
// only; consumers fetch the full records from the store.
type LedgerEventMessage struct {
	Kind          string    `json:"kind"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId,omitempty"`
	BudgetID      string    `json:"budgetId,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Month         string    `json:"month"` // YYYY-MM
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionRecorded builds the event published after a transaction
// insert has been persisted.
func NewTransactionRecorded(userID, transactionID, month string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:          KindTransactionRecorded,
		UserID:        userID,
		TransactionID: transactionID,
		Month:         month,
		Timestamp:     time.Now(),
	}
}

// NewTransactionDeleted builds the event published after a transaction
// has been removed from the ledger.
func NewTransactionDeleted(userID, transactionID, month string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:          KindTransactionDeleted,
		UserID:        userID,
		TransactionID: transactionID,
		Month:         month,
		Timestamp:     time.Now(),
	}
}

// NewBudgetExceeded builds the advisory event published when an accrual
// pushes a budget past its limit.
func NewBudgetExceeded(userID, budgetID, categoryID, month string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:       KindBudgetExceeded,
		UserID:     userID,
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Month:      month,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
