package model

import "time"

// Role is the authorization level attached to a user by the identity
// collaborator. The engine only reads it to gate admin operations.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is owned by the external identity provider; the engine persists a
// read-only projection so role checks do not require a network hop.
type User struct {
	UserID       string    `json:"userId"`
	Role         Role      `json:"role"`
	CreationTime time.Time `json:"creationTime"`
}

// ConversationTurn is one request/response pair. Immutable after creation;
// the store deletes it automatically once ExpirationTime passes.
type ConversationTurn struct {
	UserID         string    `json:"userId"`
	TurnID         string    `json:"turnId"`
	ThreadID       string    `json:"threadId"`
	UserMessage    string    `json:"userMessage"`
	Response       string    `json:"response"`
	CreationTime   time.Time `json:"creationTime"`
	ExpirationTime time.Time `json:"expirationTime"`
}

// ReminderStatus tracks a reminder's lifecycle. There is no automatic
// transition: a reminder stays pending until acknowledged or expired.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
)

// Reminder is surfaced on the user's next interaction once DueTime passes.
type Reminder struct {
	UserID         string         `json:"userId"`
	ReminderID     string         `json:"reminderId"`
	Text           string         `json:"text"`
	DueTime        time.Time      `json:"dueTime"`
	Status         ReminderStatus `json:"status"`
	CreationTime   time.Time      `json:"creationTime"`
	ExpirationTime time.Time      `json:"expirationTime"`
}

// AdminFact is an operator-authored statement that overrides live lookup
// for matching queries. Never updated; superseded by newer facts or expiry.
type AdminFact struct {
	FactID         string    `json:"factId"`
	Text           string    `json:"text"`
	CreationTime   time.Time `json:"creationTime"`
	ExpirationTime time.Time `json:"expirationTime"`
}

// Note is a user-authored scratchpad entry. Unlike turns and reminders it is
// mutable: edits rewrite title and content and bump UpdateTime. Retention is
// fixed at creation; editing does not extend it.
type Note struct {
	UserID         string    `json:"userId"`
	NoteID         string    `json:"noteId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreationTime   time.Time `json:"creationTime"`
	UpdateTime     time.Time `json:"updateTime"`
	ExpirationTime time.Time `json:"expirationTime"`
}

// BudgetEntry is an append-only expense record.
type BudgetEntry struct {
	EntryID      string    `json:"entryId"`
	Org          string    `json:"org"`
	Category     string    `json:"category"`
	Amount       float64   `json:"amount"`
	Duration     string    `json:"duration,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// BudgetSummary aggregates a ledger for one org.
type BudgetSummary struct {
	Org        string             `json:"org"`
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"byCategory"`
	Recent     []*BudgetEntry     `json:"recent"`
}

// Countdown describes the next future pending reminder.
type Countdown struct {
	ReminderID       string    `json:"reminderId"`
	Text             string    `json:"text"`
	DueTime          time.Time `json:"dueTime"`
	SecondsRemaining int64     `json:"secondsRemaining"`
}

// ChatResult is the structured response returned for each chat turn.
type ChatResult struct {
	Response          string     `json:"response"`
	UserID            string     `json:"userId"`
	ThreadID          string     `json:"threadId"`
	Timestamp         time.Time  `json:"timestamp"`
	CreatedReminderID string     `json:"createdReminderId,omitempty"`
	DueReminderCount  int        `json:"dueReminderCount"`
	NextReminder      *Countdown `json:"nextReminder,omitempty"`
}

// ListTurnsRequest captures filters used when reading turn history. Now is
// the evaluation time for the expiry filter; callers own the clock.
type ListTurnsRequest struct {
	UserID   string
	ThreadID string
	Limit    int
	Before   *time.Time
	Now      time.Time
}
