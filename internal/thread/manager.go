// Package thread decides conversation-thread continuity. There is no stored
// thread entity: membership is always recomputed from turn timestamps, which
// keeps the store append-only at the cost of a small duplicate-thread race
// window under concurrent requests from the same user.
package thread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Manager resolves the thread identifier for a new conversation turn.
type Manager struct {
	turns  store.Turns
	window time.Duration
}

// NewManager builds a manager with the configured continuity window.
func NewManager(turns store.Turns, window time.Duration) *Manager {
	return &Manager{turns: turns, window: window}
}

// Resolve returns the thread identifier to attach to the next turn. If
// forceNew is set, or the user's most recent turn is older than the window,
// a fresh identifier is minted; otherwise the recent turn's thread is reused.
func (m *Manager) Resolve(ctx context.Context, userID string, now time.Time, forceNew bool) (string, error) {
	if forceNew {
		return Mint(userID, now), nil
	}

	latest, err := m.turns.Latest(ctx, userID, now)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Mint(userID, now), nil
		}
		return "", fmt.Errorf("resolve thread: %w", err)
	}

	if now.Sub(latest.CreationTime) <= m.window {
		return latest.ThreadID, nil
	}
	return Mint(userID, now), nil
}

// Mint derives a thread identifier deterministically from the owning user
// and the starting turn's timestamp. Uniqueness only needs to hold within
// one user's turn history, so no collision handling is required.
func Mint(userID string, ts time.Time) string {
	return fmt.Sprintf("%s-%d", userID, ts.UnixNano())
}
