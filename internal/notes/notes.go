// Package notes is the per-user scratchpad. Entries are freeform text the
// engine never interprets; they live alongside turns and reminders with the
// same retention discipline.
package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Pad wraps note persistence with validation and TTL stamping.
type Pad struct {
	notes store.Notes
	ttl   time.Duration
}

// NewPad builds a scratchpad with the configured note retention.
func NewPad(notes store.Notes, ttl time.Duration) *Pad {
	return &Pad{notes: notes, ttl: ttl}
}

// Create stores a note for the user. Title is optional; content is not.
func (p *Pad) Create(ctx context.Context, userID, title, content string, now time.Time) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("create note: empty content: %w", model.ErrValidation)
	}
	return p.notes.Create(ctx, &model.Note{
		UserID:         userID,
		Title:          strings.TrimSpace(title),
		Content:        content,
		CreationTime:   now,
		UpdateTime:     now,
		ExpirationTime: now.Add(p.ttl),
	})
}

// List returns the user's non-expired notes, most recently updated first.
func (p *Pad) List(ctx context.Context, userID string, now time.Time) ([]*model.Note, error) {
	return p.notes.ListByUser(ctx, userID, now)
}

// Update rewrites a note's title and content. Retention is unchanged: a note
// expires on the schedule set when it was created.
func (p *Pad) Update(ctx context.Context, userID, noteID, title, content string, now time.Time) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("update note: empty content: %w", model.ErrValidation)
	}
	return p.notes.Update(ctx, &model.Note{
		UserID:     userID,
		NoteID:     noteID,
		Title:      strings.TrimSpace(title),
		Content:    content,
		UpdateTime: now,
	})
}

// Delete removes a note. Returns model.ErrNotFound when it does not exist.
func (p *Pad) Delete(ctx context.Context, userID, noteID string) error {
	return p.notes.Delete(ctx, userID, noteID)
}
