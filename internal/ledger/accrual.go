package ledger

import (
	"context"

	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/storage"
)

// accrue applies a newly recorded transaction to the budget covering its
// category and month. A missing budget is a no-op: the category is simply
// untracked for that month. Returns the updated budget and whether its
// accumulated spend now exceeds the limit.
//
// Callers hold s.mu.
func (s *Service) accrue(ctx context.Context, tx core.Transaction) (core.Budget, bool, error) {
	budgets, err := storage.LoadAll[core.Budget](ctx, s.store, storage.CollectionBudgets)
	if err != nil {
		return core.Budget{}, false, err
	}

	month := core.MonthOf(tx.Date)
	for i := range budgets {
		b := &budgets[i]
		if b.UserID != tx.UserID || b.CategoryID != tx.Category || b.Month != month {
			continue
		}

		b.Spent = b.Spent.Add(tx.Amount)
		if err := storage.SaveAll(ctx, s.store, storage.CollectionBudgets, budgets); err != nil {
			return core.Budget{}, false, err
		}

		over := b.Over()
		if over {
			s.logger.WarnContext(ctx, "Budget exceeded",
				log.FieldUserID, tx.UserID,
				log.FieldBudgetID, b.ID,
				log.FieldMonth, month,
				"spent", b.Spent.String(),
				"limit", b.Amount.String())
		}
		return *b, over, nil
	}

	return core.Budget{}, false, nil
}
