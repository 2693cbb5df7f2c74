package budget

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store/sqlite"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/budget.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))
	return NewLedger(sqlite.NewWithDB(db).Budget(), 10)
}

func TestRecord_AdminOnly(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.Record(ctx, model.RoleMember, "acme", "marketing", 500, "", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))

	// No write happened.
	sum, err := l.Summary(ctx, "acme")
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.Empty(t, sum.Recent)
}

func TestRecord_RejectsNonPositiveAmount(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now().UTC()

	_, err := l.Record(context.Background(), model.RoleAdmin, "acme", "infra", 0, "", now)
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = l.Record(context.Background(), model.RoleAdmin, "acme", "infra", -5, "", now)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestSummary_TotalsAndRecent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.Record(ctx, model.RoleAdmin, "acme", "marketing", 500, "3 months", now)
	require.NoError(t, err)
	_, err = l.Record(ctx, model.RoleAdmin, "acme", "marketing", 200, "", now.Add(time.Second))
	require.NoError(t, err)
	_, err = l.Record(ctx, model.RoleAdmin, "acme", "infra", 100, "", now.Add(2*time.Second))
	require.NoError(t, err)

	sum, err := l.Summary(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 800.0, sum.Total)
	assert.Equal(t, 700.0, sum.ByCategory["marketing"])
	assert.Equal(t, 100.0, sum.ByCategory["infra"])
	require.Len(t, sum.Recent, 3)
	assert.Equal(t, "infra", sum.Recent[0].Category) // newest first
}

func TestSummary_RecentCappedAtLimit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 12; i++ {
		_, err := l.Record(ctx, model.RoleAdmin, "acme", "misc", 1, "", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	sum, err := l.Summary(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, sum.Recent, 10)
	assert.Equal(t, 12.0, sum.Total)
}

func TestQueryByCategory(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.Record(ctx, model.RoleAdmin, "acme", "Marketing", 500, "", now)
	require.NoError(t, err)
	_, err = l.Record(ctx, model.RoleAdmin, "acme", "infra", 100, "", now)
	require.NoError(t, err)

	// Categories are normalized to lowercase on write and on query.
	entries, err := l.QueryByCategory(ctx, "acme", "MARKETING")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 500.0, entries[0].Amount)
}

func TestRecord_DefaultsCategory(t *testing.T) {
	l := newTestLedger(t)
	e, err := l.Record(context.Background(), model.RoleAdmin, "acme", "  ", 10, "", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "general", e.Category)
}
