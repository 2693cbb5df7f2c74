package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/witlab/concierge/internal/api/recovery"
	"github.com/witlab/concierge/internal/assembler"
	"github.com/witlab/concierge/internal/auth"
	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/knowledge"
	"github.com/witlab/concierge/internal/notes"
	"github.com/witlab/concierge/internal/reminder"
)

// Deps carries the constructed components the router wires to handlers.
type Deps struct {
	Assembler *assembler.Assembler
	Scheduler *reminder.Scheduler
	Knowledge *knowledge.Store
	Ledger    *budget.Ledger
	Notes     *notes.Pad
	Verifier  auth.Verifier
	Store     Pinger
	Log       zerolog.Logger
}

// NewRouter builds the HTTP router. Health is unauthenticated; everything
// else sits behind the credential check.
func NewRouter(deps Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(deps.Log))

	healthHandler := NewHealthHandler(deps.Store)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	authed := root.PathPrefix("/api").Subrouter()
	authed.Use(AuthMiddleware(deps.Verifier))

	chat := NewChatHandler(deps.Assembler)
	authed.HandleFunc("/chat", chat.Chat).Methods("POST")

	reminders := NewReminderHandler(deps.Scheduler)
	authed.HandleFunc("/users/{userId}/reminders", reminders.ListReminders).Methods("GET")
	authed.HandleFunc("/users/{userId}/reminders/{reminderId}/complete", reminders.CompleteReminder).Methods("POST")

	facts := NewFactHandler(deps.Knowledge)
	authed.HandleFunc("/facts", facts.SetFact).Methods("POST")
	authed.HandleFunc("/facts/lookup", facts.LookupFact).Methods("GET")

	pad := NewNoteHandler(deps.Notes)
	authed.HandleFunc("/notes", pad.CreateNote).Methods("POST")
	authed.HandleFunc("/notes", pad.ListNotes).Methods("GET")
	authed.HandleFunc("/notes/{noteId}", pad.UpdateNote).Methods("PUT")
	authed.HandleFunc("/notes/{noteId}", pad.DeleteNote).Methods("DELETE")

	budgets := NewBudgetHandler(deps.Ledger)
	authed.HandleFunc("/budget/entries", budgets.CreateEntry).Methods("POST")
	authed.HandleFunc("/budget/{org}/summary", budgets.GetSummary).Methods("GET")
	authed.HandleFunc("/budget/{org}/entries", budgets.ListEntries).Methods("GET")

	return root
}
