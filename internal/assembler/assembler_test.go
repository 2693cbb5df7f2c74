package assembler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/intent"
	"github.com/witlab/concierge/internal/knowledge"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/reminder"
	"github.com/witlab/concierge/internal/store"
	"github.com/witlab/concierge/internal/store/sqlite"
	"github.com/witlab/concierge/internal/thread"
)

type fakeGenerator struct {
	lastPrompt string
	err        error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return "generated reply", nil
}

type fakeSearcher struct {
	calls  int
	answer string
}

func (f *fakeSearcher) Search(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.answer, nil
}

type fixture struct {
	a   *Assembler
	gen *fakeGenerator
	web *fakeSearcher
	st  store.Store
	led *budget.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/assembler.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))
	st := sqlite.NewWithDB(db)

	gen := &fakeGenerator{}
	web := &fakeSearcher{answer: "web says 42"}
	led := budget.NewLedger(st.Budget(), 10)

	a := New(
		intent.NewPhraseClassifier(24*time.Hour),
		thread.NewManager(st.Turns(), 30*time.Minute),
		reminder.NewScheduler(st.Reminders(), 30*24*time.Hour),
		knowledge.NewStore(st.Facts(), 10*365*24*time.Hour),
		led,
		gen,
		web,
		st.Turns(),
		5,
		30*24*time.Hour,
		zerolog.Nop(),
	)
	return &fixture{a: a, gen: gen, web: web, st: st, led: led}
}

func (f *fixture) at(ts time.Time) {
	f.a.nowFn = func() time.Time { return ts }
}

func TestHandle_ReminderCreatedThenSurfaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.at(t0)
	res, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Remind me to call the dentist tomorrow"})
	require.NoError(t, err)
	require.NotEmpty(t, res.CreatedReminderID)
	assert.Zero(t, res.DueReminderCount)
	require.NotNil(t, res.NextReminder)
	assert.Equal(t, "call the dentist", res.NextReminder.Text)
	assert.Equal(t, t0.Add(24*time.Hour), res.NextReminder.DueTime)

	// 25 hours later the reminder is due and surfaced on an ordinary message.
	f.at(t0.Add(25 * time.Hour))
	res, err = f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Hello"})
	require.NoError(t, err)
	assert.Empty(t, res.CreatedReminderID)
	assert.Equal(t, 1, res.DueReminderCount)
	assert.Contains(t, f.gen.lastPrompt, "call the dentist")
}

func TestHandle_BudgetTrackRecordsEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.at(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	res, err := f.a.Handle(ctx, Request{
		UserID:  "admin1",
		Role:    model.RoleAdmin,
		Org:     "acme",
		Message: "I spent $500 today on marketing for 3 months",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated reply", res.Response)

	sum, err := f.led.Summary(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 500.0, sum.ByCategory["marketing"])
	assert.GreaterOrEqual(t, sum.Total, 500.0)
}

func TestHandle_BudgetTrackByMemberFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.at(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.a.Handle(ctx, Request{
		UserID:  "u1",
		Role:    model.RoleMember,
		Org:     "acme",
		Message: "I spent $500 on marketing",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))

	// No turn was written for the failed request.
	turns, err := f.st.Turns().List(ctx, model.ListTurnsRequest{UserID: "u1", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestHandle_ThreadContinuity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.at(t0)
	first, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Hello"})
	require.NoError(t, err)

	// 5 minutes later: same thread, and the first turn appears in the prompt.
	f.at(t0.Add(5 * time.Minute))
	second, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "What's my name?"})
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Contains(t, f.gen.lastPrompt, "Hello")
	assert.Contains(t, f.gen.lastPrompt, "generated reply")

	// 35 minutes after that: a fresh thread.
	f.at(t0.Add(40 * time.Minute))
	third, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Back again"})
	require.NoError(t, err)
	assert.NotEqual(t, second.ThreadID, third.ThreadID)
}

func TestHandle_NewThreadFlagMintsFreshThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.at(t0)
	first, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Hello"})
	require.NoError(t, err)

	f.at(t0.Add(time.Minute))
	second, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "New topic", NewThread: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ThreadID, second.ThreadID)
}

func TestHandle_KnowledgeOverrideSuppressesWebLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.at(t0)
	_, err := f.a.Handle(ctx, Request{
		UserID:  "admin1",
		Role:    model.RoleAdmin,
		Message: "remember that the office wifi password is hunter2",
	})
	require.NoError(t, err)

	f.at(t0.Add(time.Minute))
	_, err = f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "What is the office wifi password?"})
	require.NoError(t, err)
	assert.Contains(t, f.gen.lastPrompt, "hunter2")
	assert.Zero(t, f.web.calls)
}

func TestHandle_WebLookupOnKnowledgeMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.at(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "What is the tallest mountain?"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.web.calls)
	assert.Contains(t, f.gen.lastPrompt, "web says 42")
}

func TestHandle_NoLookupForSmallTalk(t *testing.T) {
	f := newFixture(t)
	f.at(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.a.Handle(context.Background(), Request{UserID: "u1", Role: model.RoleMember, Message: "Hello there"})
	require.NoError(t, err)
	assert.Zero(t, f.web.calls)
}

func TestHandle_GenerateFailureCommitsNoTurn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.at(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	f.gen.err = fmt.Errorf("backend unavailable")
	_, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "Hello"})
	require.Error(t, err)

	turns, err := f.st.Turns().List(ctx, model.ListTurnsRequest{UserID: "u1", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestHandle_HistoryCappedAtLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		f.at(t0.Add(time.Duration(i) * time.Minute))
		_, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: fmt.Sprintf("message %d", i)})
		require.NoError(t, err)
	}

	// The 9th turn sees only the 5 most recent prior turns.
	f.at(t0.Add(8 * time.Minute))
	_, err := f.a.Handle(ctx, Request{UserID: "u1", Role: model.RoleMember, Message: "message 8"})
	require.NoError(t, err)
	assert.NotContains(t, f.gen.lastPrompt, "message 2\n")
	assert.Contains(t, f.gen.lastPrompt, "message 3")
	assert.Contains(t, f.gen.lastPrompt, "message 7")
}

func TestHandle_BudgetSummaryQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.at(t0)
	_, err := f.a.Handle(ctx, Request{UserID: "admin1", Role: model.RoleAdmin, Org: "acme", Message: "I spent $250 on infra"})
	require.NoError(t, err)

	f.at(t0.Add(time.Minute))
	_, err = f.a.Handle(ctx, Request{UserID: "admin1", Role: model.RoleAdmin, Org: "acme", Message: "Give me the budget summary"})
	require.NoError(t, err)
	assert.Contains(t, f.gen.lastPrompt, "total $250.00")
	assert.Contains(t, f.gen.lastPrompt, "infra")
}
