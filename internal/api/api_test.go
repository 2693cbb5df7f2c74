package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witlab/concierge/internal/assembler"
	"github.com/witlab/concierge/internal/auth"
	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/intent"
	"github.com/witlab/concierge/internal/knowledge"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/notes"
	"github.com/witlab/concierge/internal/reminder"
	"github.com/witlab/concierge/internal/store/sqlite"
	"github.com/witlab/concierge/internal/thread"
)

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "generated reply", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/api.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))
	st := sqlite.NewWithDB(db)

	scheduler := reminder.NewScheduler(st.Reminders(), 30*24*time.Hour)
	knowledgeStore := knowledge.NewStore(st.Facts(), 10*365*24*time.Hour)
	ledger := budget.NewLedger(st.Budget(), 10)
	pad := notes.NewPad(st.Notes(), 30*24*time.Hour)
	asm := assembler.New(
		intent.NewPhraseClassifier(24*time.Hour),
		thread.NewManager(st.Turns(), 30*time.Minute),
		scheduler,
		knowledgeStore,
		ledger,
		echoGenerator{},
		nil,
		st.Turns(),
		5,
		30*24*time.Hour,
		zerolog.Nop(),
	)
	verifier := auth.NewStaticVerifier(map[string]auth.Identity{
		"tok-admin":  {UserID: "alice", Role: model.RoleAdmin},
		"tok-member": {UserID: "bob", Role: model.RoleMember},
	})

	router := NewRouter(Deps{
		Assembler: asm,
		Scheduler: scheduler,
		Knowledge: knowledgeStore,
		Ledger:    ledger,
		Notes:     pad,
		Verifier:  verifier,
		Store:     st.(Pinger),
		Log:       zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChat_RequiresCredential(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/chat", "", map[string]string{"message": "hi"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/chat", "tok-member", map[string]string{"message": ""})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_ReminderFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/chat", "tok-member",
		map[string]string{"message": "Remind me to call the dentist in 2 hours"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chat model.ChatResult
	decode(t, resp, &chat)
	require.NotEmpty(t, chat.CreatedReminderID)
	assert.Equal(t, "bob", chat.UserID)
	require.NotNil(t, chat.NextReminder)
	assert.Equal(t, "call the dentist", chat.NextReminder.Text)

	// The reminder shows in the pending list but is not yet due.
	resp = do(t, http.MethodGet, srv.URL+"/api/users/bob/reminders", "tok-member", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count     int               `json:"count"`
		Reminders []*model.Reminder `json:"reminders"`
	}
	decode(t, resp, &list)
	require.Equal(t, 1, list.Count)

	resp = do(t, http.MethodGet, srv.URL+"/api/users/bob/reminders?due=1", "tok-member", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	assert.Zero(t, list.Count)

	// Acknowledge it.
	resp = do(t, http.MethodPost,
		fmt.Sprintf("%s/api/users/bob/reminders/%s/complete", srv.URL, chat.CreatedReminderID),
		"tok-member", nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/users/bob/reminders", "tok-member", nil)
	decode(t, resp, &list)
	assert.Zero(t, list.Count)
}

func TestCompleteReminder_UnknownIDIs404(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/users/bob/reminders/absent/complete", "tok-member", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReminders_CrossUserAccessDenied(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/users/alice/reminders", "tok-member", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins may read anyone's reminders.
	resp = do(t, http.MethodGet, srv.URL+"/api/users/bob/reminders", "tok-admin", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFacts_AdminGate(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/facts", "tok-member",
		map[string]string{"fact": "the office wifi password is hunter2"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/facts", "tok-admin",
		map[string]string{"fact": "the office wifi password is hunter2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var fact model.AdminFact
	decode(t, resp, &fact)
	assert.NotEmpty(t, fact.FactID)

	resp = do(t, http.MethodGet, srv.URL+"/api/facts/lookup?q=wifi+password", "tok-member", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lookup struct {
		Match *model.AdminFact `json:"match"`
	}
	decode(t, resp, &lookup)
	require.NotNil(t, lookup.Match)
	assert.Contains(t, lookup.Match.Text, "hunter2")
}

func TestBudget_AdminGate(t *testing.T) {
	srv := newTestServer(t)

	entry := map[string]interface{}{"org": "acme", "category": "marketing", "amount": 500.0, "duration": "3 months"}

	resp := do(t, http.MethodPost, srv.URL+"/api/budget/entries", "tok-member", entry)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/budget/entries", "tok-admin", entry)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.BudgetEntry
	decode(t, resp, &created)
	assert.Equal(t, "marketing", created.Category)

	resp = do(t, http.MethodGet, srv.URL+"/api/budget/acme/summary", "tok-admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum model.BudgetSummary
	decode(t, resp, &sum)
	assert.Equal(t, 500.0, sum.Total)
	assert.Equal(t, 500.0, sum.ByCategory["marketing"])

	resp = do(t, http.MethodGet, srv.URL+"/api/budget/acme/summary", "tok-member", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/budget/acme/entries?category=marketing", "tok-admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Count)
}

func TestNotes_CRUD(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/notes", "tok-member",
		map[string]string{"title": "groceries", "content": "milk, eggs"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Note
	decode(t, resp, &created)
	require.NotEmpty(t, created.NoteID)
	assert.Equal(t, "bob", created.UserID)

	resp = do(t, http.MethodPut, srv.URL+"/api/notes/"+created.NoteID, "tok-member",
		map[string]string{"title": "groceries", "content": "milk, eggs, butter"})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/notes", "tok-member", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int           `json:"count"`
		Notes []*model.Note `json:"notes"`
	}
	decode(t, resp, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "milk, eggs, butter", list.Notes[0].Content)

	resp = do(t, http.MethodDelete, srv.URL+"/api/notes/"+created.NoteID, "tok-member", nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/notes", "tok-member", nil)
	decode(t, resp, &list)
	assert.Zero(t, list.Count)
}

func TestNotes_ScopedToCaller(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/notes", "tok-member",
		map[string]string{"content": "bob's note"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Note
	decode(t, resp, &created)

	// Another caller sees an empty list and cannot delete bob's note.
	resp = do(t, http.MethodGet, srv.URL+"/api/notes", "tok-admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, resp, &list)
	assert.Zero(t, list.Count)

	resp = do(t, http.MethodDelete, srv.URL+"/api/notes/"+created.NoteID, "tok-admin", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotes_EmptyContentRejected(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/notes", "tok-member",
		map[string]string{"title": "no body"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBudget_InvalidAmountRejected(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/budget/entries", "tok-admin",
		map[string]interface{}{"org": "acme", "category": "x", "amount": -1.0})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
