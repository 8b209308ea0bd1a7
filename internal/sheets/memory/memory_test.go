package memory

import (
	"context"
	"testing"
)

func TestWriteSummary(t *testing.T) {
	w := New()
	ctx := context.Background()

	rows := [][]string{
		{"Name", "Income", "Expense", "Net"},
		{"Food", "0", "42.50", "-42.50"},
	}
	if err := w.WriteSummary(ctx, "2025-07", rows); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	// mutating the caller's slice must not affect the stored copy
	rows[1][1] = "changed"

	got := w.Summaries()
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	if got[0].Title != "2025-07" {
		t.Fatalf("Title = %q, want 2025-07", got[0].Title)
	}
	if got[0].Rows[1][1] != "0" {
		t.Fatalf("stored rows aliased caller slice: %q", got[0].Rows[1][1])
	}
}

func TestSummariesAccumulate(t *testing.T) {
	w := New()
	ctx := context.Background()

	for _, title := range []string{"2025-06", "2025-07"} {
		if err := w.WriteSummary(ctx, title, nil); err != nil {
			t.Fatalf("WriteSummary(%s): %v", title, err)
		}
	}
	if got := w.Summaries(); len(got) != 2 || got[1].Title != "2025-07" {
		t.Fatalf("unexpected summaries %+v", got)
	}
}
