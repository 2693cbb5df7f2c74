// Package reminder creates, queries, and retires reminders. Due-ness is a
// read-side computation over due timestamps, re-evaluated on every request;
// there is no background timer and nothing to cancel.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Scheduler manages reminder lifecycle over the entity store.
type Scheduler struct {
	reminders store.Reminders
	ttl       time.Duration
}

// NewScheduler builds a scheduler with the configured retention period.
func NewScheduler(reminders store.Reminders, ttl time.Duration) *Scheduler {
	return &Scheduler{reminders: reminders, ttl: ttl}
}

// Create writes a pending reminder due offset from now and returns its
// identifier. It always succeeds barring store failure.
func (s *Scheduler) Create(ctx context.Context, userID, text string, offset time.Duration, now time.Time) (string, error) {
	r := &model.Reminder{
		UserID:         userID,
		Text:           text,
		DueTime:        now.Add(offset),
		Status:         model.ReminderPending,
		CreationTime:   now,
		ExpirationTime: now.Add(s.ttl),
	}
	created, err := s.reminders.Create(ctx, r)
	if err != nil {
		return "", fmt.Errorf("create reminder: %w", err)
	}
	return created.ReminderID, nil
}

// DueReminders returns all pending reminders with due <= now, ascending by
// due time. The count is unbounded; a user with many overdue reminders gets
// all of them on every interaction until they acknowledge or they expire.
func (s *Scheduler) DueReminders(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	return s.reminders.Due(ctx, userID, now)
}

// ListPending returns every non-expired pending reminder, due or not,
// ascending by due time.
func (s *Scheduler) ListPending(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	return s.reminders.ListPending(ctx, userID, now)
}

// NextReminder returns the pending reminder with the smallest due time at or
// after now, plus the seconds remaining, or nil when no future reminder
// exists. Distinct from DueReminders, which only looks backward.
func (s *Scheduler) NextReminder(ctx context.Context, userID string, now time.Time) (*model.Countdown, error) {
	r, err := s.reminders.Next(ctx, userID, now)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("next reminder: %w", err)
	}
	return &model.Countdown{
		ReminderID:       r.ReminderID,
		Text:             r.Text,
		DueTime:          r.DueTime,
		SecondsRemaining: int64(r.DueTime.Sub(now).Seconds()),
	}, nil
}

// Complete marks a reminder as acknowledged. This is the only mutation a
// reminder undergoes; completed reminders stay stored until expiry.
func (s *Scheduler) Complete(ctx context.Context, userID, reminderID string) error {
	return s.reminders.Complete(ctx, userID, reminderID)
}
