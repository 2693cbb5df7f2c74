// Package budget is an append-only expense ledger with category aggregation.
// All mutations are admin-gated before any write happens.
package budget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Ledger wraps budget persistence with authorization and aggregation.
type Ledger struct {
	budget      store.Budget
	recentLimit int
}

// NewLedger builds a ledger; recentLimit bounds the entries echoed in a summary.
func NewLedger(budget store.Budget, recentLimit int) *Ledger {
	return &Ledger{budget: budget, recentLimit: recentLimit}
}

// Record appends a BudgetEntry. Unauthorized attempts fail before any write.
func (l *Ledger) Record(ctx context.Context, role model.Role, org, category string, amount float64, duration string, now time.Time) (*model.BudgetEntry, error) {
	if role != model.RoleAdmin {
		return nil, fmt.Errorf("record budget entry: %w", model.ErrUnauthorized)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("record budget entry: amount must be positive: %w", model.ErrValidation)
	}
	org = strings.TrimSpace(org)
	if org == "" {
		return nil, fmt.Errorf("record budget entry: org is required: %w", model.ErrValidation)
	}
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" {
		category = "general"
	}
	return l.budget.Create(ctx, &model.BudgetEntry{
		Org:          org,
		Category:     category,
		Amount:       amount,
		Duration:     duration,
		CreationTime: now,
	})
}

// Summary returns the org total, per-category subtotals, and the most recent
// entries ordered by descending creation time.
func (l *Ledger) Summary(ctx context.Context, org string) (*model.BudgetSummary, error) {
	total, byCategory, err := l.budget.Totals(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("budget totals: %w", err)
	}
	recent, err := l.budget.ListRecent(ctx, org, l.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("budget recent entries: %w", err)
	}
	if recent == nil {
		recent = []*model.BudgetEntry{}
	}
	return &model.BudgetSummary{
		Org:        org,
		Total:      total,
		ByCategory: byCategory,
		Recent:     recent,
	}, nil
}

// QueryByCategory returns matching entries for one category.
func (l *Ledger) QueryByCategory(ctx context.Context, org, category string) ([]*model.BudgetEntry, error) {
	return l.budget.ListByCategory(ctx, org, strings.ToLower(category))
}
