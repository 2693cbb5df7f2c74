package store

import (
	"context"
	"time"

	"github.com/witlab/concierge/internal/model"
)

// Store exposes persistence operations required by the engine components.
// Implementations live under internal/store/<driver>/ (e.g., sqlite, postgres).
//
// Expiry contract: every read filters rows whose expiration has passed, and
// writes opportunistically sweep them. Callers pass the evaluation time so
// tests can control the clock.
type Store interface {
	Users() Users
	Turns() Turns
	Reminders() Reminders
	Facts() Facts
	Budget() Budget
	Notes() Notes
}

type Users interface {
	Put(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

type Turns interface {
	Create(ctx context.Context, t *model.ConversationTurn) (*model.ConversationTurn, error)
	// Latest returns the most recent non-expired turn for the user, or
	// model.ErrNotFound when the user has no turn history.
	Latest(ctx context.Context, userID string, now time.Time) (*model.ConversationTurn, error)
	// List returns non-expired turns in a thread, most recent first,
	// evaluated at req.Now.
	List(ctx context.Context, req model.ListTurnsRequest) ([]*model.ConversationTurn, error)
}

type Reminders interface {
	Create(ctx context.Context, r *model.Reminder) (*model.Reminder, error)
	GetByID(ctx context.Context, userID, reminderID string) (*model.Reminder, error)
	// Due returns pending reminders with due <= now, ascending by due time.
	Due(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error)
	// ListPending returns all non-expired pending reminders regardless of
	// due-ness, ascending by due time.
	ListPending(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error)
	// Next returns the pending reminder with the smallest due >= now, or
	// model.ErrNotFound when no future reminder exists.
	Next(ctx context.Context, userID string, now time.Time) (*model.Reminder, error)
	Complete(ctx context.Context, userID, reminderID string) error
}

type Facts interface {
	Create(ctx context.Context, f *model.AdminFact) (*model.AdminFact, error)
	// ListActive returns non-expired facts, newest first.
	ListActive(ctx context.Context, now time.Time) ([]*model.AdminFact, error)
}

type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	// ListByUser returns non-expired notes, most recently updated first.
	ListByUser(ctx context.Context, userID string, now time.Time) ([]*model.Note, error)
	// Update rewrites title, content, and update time. Returns
	// model.ErrNotFound when the note does not exist.
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, userID, noteID string) error
}

type Budget interface {
	Create(ctx context.Context, e *model.BudgetEntry) (*model.BudgetEntry, error)
	ListRecent(ctx context.Context, org string, limit int) ([]*model.BudgetEntry, error)
	ListByCategory(ctx context.Context, org, category string) ([]*model.BudgetEntry, error)
	// Totals returns the org-wide total and per-category subtotals.
	Totals(ctx context.Context, org string) (float64, map[string]float64, error)
}
