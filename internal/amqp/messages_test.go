package amqp

import "testing"

func TestLedgerEventMessageRoundTrip(t *testing.T) {
	msg := NewTransactionRecorded("u1", "tx-9", "2024-06")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindTransactionRecorded {
		t.Fatalf("kind = %q, want %q", got.Kind, KindTransactionRecorded)
	}
	if got.UserID != "u1" || got.TransactionID != "tx-9" || got.Month != "2024-06" {
		t.Fatalf("fields mangled: %+v", got)
	}
}

func TestBudgetExceededMessage(t *testing.T) {
	msg := NewBudgetExceeded("u1", "b-1", "cat-food", "2024-06")
	if msg.Kind != KindBudgetExceeded {
		t.Fatalf("kind = %q", msg.Kind)
	}
	if msg.BudgetID != "b-1" || msg.CategoryID != "cat-food" {
		t.Fatalf("fields mangled: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}
}

func TestLedgerEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte("{broken")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
