package notes

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

func newTestPad(t *testing.T) *Pad {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/notes.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))
	return NewPad(sqlite.NewWithDB(db).Notes(), 30*24*time.Hour)
}

func TestCreateAndList(t *testing.T) {
	p := newTestPad(t)
	ctx := context.Background()
	now := time.Now().UTC()

	n, err := p.Create(ctx, "u1", "groceries", "milk, eggs", now)
	require.NoError(t, err)
	assert.NotEmpty(t, n.NoteID)
	assert.Equal(t, now.Add(30*24*time.Hour), n.ExpirationTime)

	_, err = p.Create(ctx, "u1", "", "standalone content", now.Add(time.Second))
	require.NoError(t, err)

	got, err := p.List(ctx, "u1", now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Most recently updated first.
	assert.Equal(t, "standalone content", got[0].Content)
}

func TestCreate_RequiresContent(t *testing.T) {
	p := newTestPad(t)
	_, err := p.Create(context.Background(), "u1", "title only", "   ", time.Now().UTC())
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestUpdate_RewritesAndReorders(t *testing.T) {
	p := newTestPad(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := p.Create(ctx, "u1", "a", "first", now)
	require.NoError(t, err)
	_, err = p.Create(ctx, "u1", "b", "second", now.Add(time.Second))
	require.NoError(t, err)

	require.NoError(t, p.Update(ctx, "u1", first.NoteID, "a", "first edited", now.Add(2*time.Second)))

	got, err := p.List(ctx, "u1", now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first edited", got[0].Content)
	assert.True(t, first.CreationTime.Equal(got[0].CreationTime))
}

func TestUpdate_AbsentNote(t *testing.T) {
	p := newTestPad(t)
	err := p.Update(context.Background(), "u1", "missing", "t", "c", time.Now().UTC())
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestDelete(t *testing.T) {
	p := newTestPad(t)
	ctx := context.Background()
	now := time.Now().UTC()

	n, err := p.Create(ctx, "u1", "", "throwaway", now)
	require.NoError(t, err)
	require.NoError(t, p.Delete(ctx, "u1", n.NoteID))

	got, err := p.List(ctx, "u1", now)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.True(t, errors.Is(p.Delete(ctx, "u1", n.NoteID), model.ErrNotFound))
}

func TestList_SkipsExpired(t *testing.T) {
	p := newTestPad(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := p.Create(ctx, "u1", "", "short lived", now)
	require.NoError(t, err)

	got, err := p.List(ctx, "u1", now.Add(31*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}
