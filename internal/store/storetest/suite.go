package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	userID := "u-" + uuid.New().String()

	// Users
	if _, err := s.Users().Put(ctx, &model.User{UserID: userID, Role: model.RoleAdmin}); err != nil {
		t.Fatalf("PutUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.Role != model.RoleAdmin {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "absent-user"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser absent: want ErrNotFound, got %v", err)
	}

	// Turns
	t1 := &model.ConversationTurn{
		UserID: userID, ThreadID: userID + "-1", UserMessage: "hello", Response: "hi",
		CreationTime: now.Add(-time.Minute), ExpirationTime: now.Add(30 * 24 * time.Hour),
	}
	if _, err := s.Turns().Create(ctx, t1); err != nil {
		t.Fatalf("CreateTurn t1: %v", err)
	}
	t2 := &model.ConversationTurn{
		UserID: userID, ThreadID: userID + "-1", UserMessage: "again", Response: "yes",
		CreationTime: now, ExpirationTime: now.Add(30 * 24 * time.Hour),
	}
	if _, err := s.Turns().Create(ctx, t2); err != nil {
		t.Fatalf("CreateTurn t2: %v", err)
	}
	if latest, err := s.Turns().Latest(ctx, userID, now); err != nil || latest.UserMessage != "again" {
		t.Fatalf("LatestTurn: got=%v err=%v", latest, err)
	}
	lst, err := s.Turns().List(ctx, model.ListTurnsRequest{UserID: userID, ThreadID: userID + "-1", Limit: 5, Now: now})
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListTurns: n=%d err=%v", len(lst), err)
	}
	if lst[0].UserMessage != "again" {
		t.Fatalf("ListTurns order: want newest first, got %q", lst[0].UserMessage)
	}

	// Expired turns are invisible
	expired := &model.ConversationTurn{
		UserID: userID, ThreadID: userID + "-2", UserMessage: "old", Response: "old",
		CreationTime: now.Add(-48 * time.Hour), ExpirationTime: now.Add(-24 * time.Hour),
	}
	if _, err := s.Turns().Create(ctx, expired); err != nil {
		t.Fatalf("CreateTurn expired: %v", err)
	}
	if latest, err := s.Turns().Latest(ctx, userID, now); err != nil || latest.UserMessage == "old" {
		t.Fatalf("LatestTurn must skip expired rows: got=%v err=%v", latest, err)
	}
	if lst, err := s.Turns().List(ctx, model.ListTurnsRequest{UserID: userID, ThreadID: userID + "-2", Limit: 5, Now: now}); err != nil || len(lst) != 0 {
		t.Fatalf("ListTurns must skip expired rows: n=%d err=%v", len(lst), err)
	}

	// Reminders
	r1 := &model.Reminder{
		UserID: userID, Text: "call dentist", DueTime: now.Add(-time.Hour),
		Status: model.ReminderPending, CreationTime: now.Add(-2 * time.Hour),
		ExpirationTime: now.Add(30 * 24 * time.Hour),
	}
	r1, err = s.Reminders().Create(ctx, r1)
	if err != nil || r1.ReminderID == "" {
		t.Fatalf("CreateReminder r1: id=%q err=%v", r1.ReminderID, err)
	}
	r2 := &model.Reminder{
		UserID: userID, Text: "pay rent", DueTime: now.Add(time.Hour),
		Status: model.ReminderPending, CreationTime: now,
		ExpirationTime: now.Add(30 * 24 * time.Hour),
	}
	if r2, err = s.Reminders().Create(ctx, r2); err != nil {
		t.Fatalf("CreateReminder r2: %v", err)
	}

	due, err := s.Reminders().Due(ctx, userID, now)
	if err != nil || len(due) != 1 || due[0].Text != "call dentist" {
		t.Fatalf("DueReminders: got=%v err=%v", due, err)
	}
	next, err := s.Reminders().Next(ctx, userID, now)
	if err != nil || next.Text != "pay rent" {
		t.Fatalf("NextReminder: got=%v err=%v", next, err)
	}
	pending, err := s.Reminders().ListPending(ctx, userID, now)
	if err != nil || len(pending) != 2 || pending[0].Text != "call dentist" {
		t.Fatalf("ListPending: got=%v err=%v", pending, err)
	}

	if err := s.Reminders().Complete(ctx, userID, r1.ReminderID); err != nil {
		t.Fatalf("CompleteReminder: %v", err)
	}
	if due, err = s.Reminders().Due(ctx, userID, now); err != nil || len(due) != 0 {
		t.Fatalf("DueReminders after complete: n=%d err=%v", len(due), err)
	}
	if err := s.Reminders().Complete(ctx, userID, "absent"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CompleteReminder absent: want ErrNotFound, got %v", err)
	}

	// Facts
	fact := &model.AdminFact{
		Text: "office wifi password is hunter2", CreationTime: now,
		ExpirationTime: now.Add(10 * 365 * 24 * time.Hour),
	}
	if _, err := s.Facts().Create(ctx, fact); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	stale := &model.AdminFact{
		Text: "old fact", CreationTime: now.Add(-time.Hour), ExpirationTime: now.Add(-time.Minute),
	}
	if _, err := s.Facts().Create(ctx, stale); err != nil {
		t.Fatalf("CreateFact stale: %v", err)
	}
	active, err := s.Facts().ListActive(ctx, now)
	if err != nil || len(active) != 1 || active[0].Text != fact.Text {
		t.Fatalf("ListActiveFacts: n=%d err=%v", len(active), err)
	}

	// Notes
	note := &model.Note{
		UserID: userID, Title: "groceries", Content: "milk",
		CreationTime: now, UpdateTime: now, ExpirationTime: now.Add(30 * 24 * time.Hour),
	}
	note, err = s.Notes().Create(ctx, note)
	if err != nil || note.NoteID == "" {
		t.Fatalf("CreateNote: id=%q err=%v", note.NoteID, err)
	}
	gone := &model.Note{
		UserID: userID, Content: "stale", CreationTime: now.Add(-time.Hour),
		UpdateTime: now.Add(-time.Hour), ExpirationTime: now.Add(-time.Minute),
	}
	if _, err := s.Notes().Create(ctx, gone); err != nil {
		t.Fatalf("CreateNote stale: %v", err)
	}
	nl, err := s.Notes().ListByUser(ctx, userID, now)
	if err != nil || len(nl) != 1 || nl[0].Content != "milk" {
		t.Fatalf("ListNotes: n=%d err=%v", len(nl), err)
	}
	upd := &model.Note{
		UserID: userID, NoteID: note.NoteID, Title: "groceries",
		Content: "milk and eggs", UpdateTime: now.Add(time.Second),
	}
	if err := s.Notes().Update(ctx, upd); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if nl, err = s.Notes().ListByUser(ctx, userID, now); err != nil || len(nl) != 1 || nl[0].Content != "milk and eggs" {
		t.Fatalf("ListNotes after update: n=%d err=%v", len(nl), err)
	}
	absent := &model.Note{UserID: userID, NoteID: "absent", Content: "x", UpdateTime: now}
	if err := s.Notes().Update(ctx, absent); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateNote absent: want ErrNotFound, got %v", err)
	}
	if err := s.Notes().Delete(ctx, userID, note.NoteID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := s.Notes().Delete(ctx, userID, note.NoteID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteNote absent: want ErrNotFound, got %v", err)
	}

	// Budget
	org := "org-" + uuid.New().String()
	for i, e := range []*model.BudgetEntry{
		{Org: org, Category: "marketing", Amount: 500, Duration: "3 months"},
		{Org: org, Category: "marketing", Amount: 250},
		{Org: org, Category: "infra", Amount: 100},
	} {
		e.CreationTime = now.Add(time.Duration(i) * time.Second)
		if _, err := s.Budget().Create(ctx, e); err != nil {
			t.Fatalf("CreateBudgetEntry %d: %v", i, err)
		}
	}
	total, byCat, err := s.Budget().Totals(ctx, org)
	if err != nil || total != 850 || byCat["marketing"] != 750 || byCat["infra"] != 100 {
		t.Fatalf("BudgetTotals: total=%v byCat=%v err=%v", total, byCat, err)
	}
	recent, err := s.Budget().ListRecent(ctx, org, 2)
	if err != nil || len(recent) != 2 || recent[0].Category != "infra" {
		t.Fatalf("ListRecent: got=%v err=%v", recent, err)
	}
	cat, err := s.Budget().ListByCategory(ctx, org, "marketing")
	if err != nil || len(cat) != 2 {
		t.Fatalf("ListByCategory: n=%d err=%v", len(cat), err)
	}
}
