// Package assembler orchestrates a single chat turn: classify the message,
// apply any side effect, resolve the thread, gather reminders / overrides /
// history, build the augmented prompt, call the generative backend, and
// persist the turn. Each request is handled independently; the only shared
// state is the durable store.
package assembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/genai"
	"github.com/witlab/concierge/internal/intent"
	"github.com/witlab/concierge/internal/knowledge"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/reminder"
	"github.com/witlab/concierge/internal/store"
	"github.com/witlab/concierge/internal/thread"
	"github.com/witlab/concierge/internal/websearch"
)

// Request is one incoming chat message with its verified caller.
type Request struct {
	UserID    string
	Role      model.Role
	Org       string
	Message   string
	NewThread bool
}

// Assembler wires the core components together for the chat path.
type Assembler struct {
	classifier intent.Classifier
	threads    *thread.Manager
	scheduler  *reminder.Scheduler
	knowledge  *knowledge.Store
	ledger     *budget.Ledger
	generator  genai.Generator
	searcher   websearch.Searcher
	turns      store.Turns

	historyLimit int
	turnTTL      time.Duration
	log          zerolog.Logger

	// nowFn exists so tests can pin the clock.
	nowFn func() time.Time
}

// New builds an assembler. searcher may be nil when live lookup is disabled.
func New(
	classifier intent.Classifier,
	threads *thread.Manager,
	scheduler *reminder.Scheduler,
	knowledgeStore *knowledge.Store,
	ledger *budget.Ledger,
	generator genai.Generator,
	searcher websearch.Searcher,
	turns store.Turns,
	historyLimit int,
	turnTTL time.Duration,
	log zerolog.Logger,
) *Assembler {
	return &Assembler{
		classifier:   classifier,
		threads:      threads,
		scheduler:    scheduler,
		knowledge:    knowledgeStore,
		ledger:       ledger,
		generator:    generator,
		searcher:     searcher,
		turns:        turns,
		historyLimit: historyLimit,
		turnTTL:      turnTTL,
		log:          log,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

// Handle runs one chat turn end to end. A store or generation failure aborts
// the request; the conversation turn is only written after generation
// succeeds, so a failed request commits no partial state beyond the intent's
// own side effect.
func (a *Assembler) Handle(ctx context.Context, req Request) (*model.ChatResult, error) {
	now := a.nowFn()

	res := a.classifier.Classify(req.Message, req.Role)

	var confirmation string
	var createdReminderID string

	switch res.Kind {
	case intent.ReminderCreate:
		id, err := a.scheduler.Create(ctx, req.UserID, res.ReminderText, res.DueOffset, now)
		if err != nil {
			return nil, fmt.Errorf("handle reminder intent: %w", err)
		}
		createdReminderID = id
		confirmation = fmt.Sprintf("A reminder %q was created, due %s.", res.ReminderText, now.Add(res.DueOffset).Format(time.RFC3339))

	case intent.BudgetTrack:
		entry, err := a.ledger.Record(ctx, req.Role, a.org(req), res.Category, res.Amount, res.Duration, now)
		if err != nil {
			return nil, fmt.Errorf("handle budget intent: %w", err)
		}
		confirmation = fmt.Sprintf("Recorded $%.2f under %q (entry %s).", entry.Amount, entry.Category, entry.EntryID)

	case intent.BudgetQuery:
		block, err := a.budgetBlock(ctx, req, res)
		if err != nil {
			return nil, fmt.Errorf("handle budget query: %w", err)
		}
		confirmation = block

	case intent.KnowledgeSet:
		fact, err := a.knowledge.Set(ctx, req.Role, res.Fact, now)
		if err != nil {
			return nil, fmt.Errorf("handle knowledge intent: %w", err)
		}
		confirmation = fmt.Sprintf("Stored knowledge: %s", fact.Text)
	}

	threadID, err := a.threads.Resolve(ctx, req.UserID, now, req.NewThread)
	if err != nil {
		return nil, err
	}

	due, err := a.scheduler.DueReminders(ctx, req.UserID, now)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	next, err := a.scheduler.NextReminder(ctx, req.UserID, now)
	if err != nil {
		return nil, err
	}

	grounding, err := a.grounding(ctx, req.Message, now)
	if err != nil {
		return nil, err
	}

	history, err := a.turns.List(ctx, model.ListTurnsRequest{
		UserID:   req.UserID,
		ThreadID: threadID,
		Limit:    a.historyLimit,
		Now:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("turn history: %w", err)
	}

	prompt := buildPrompt(grounding, confirmation, due, history, req.Message)

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	turn := &model.ConversationTurn{
		UserID:         req.UserID,
		TurnID:         uuid.NewString(),
		ThreadID:       threadID,
		UserMessage:    req.Message,
		Response:       text,
		CreationTime:   now,
		ExpirationTime: now.Add(a.turnTTL),
	}
	if _, err := a.turns.Create(ctx, turn); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	a.log.Info().
		Str("userId", req.UserID).
		Str("threadId", threadID).
		Str("intent", string(res.Kind)).
		Int("dueReminders", len(due)).
		Msg("chat turn handled")

	return &model.ChatResult{
		Response:          text,
		UserID:            req.UserID,
		ThreadID:          threadID,
		Timestamp:         now,
		CreatedReminderID: createdReminderID,
		DueReminderCount:  len(due),
		NextReminder:      next,
	}, nil
}

// org falls back to a per-user ledger when the request names no org.
func (a *Assembler) org(req Request) string {
	if req.Org != "" {
		return req.Org
	}
	return req.UserID
}

// budgetBlock renders the queried ledger state as a prompt context block so
// the generated reply can cite real numbers.
func (a *Assembler) budgetBlock(ctx context.Context, req Request, res intent.Result) (string, error) {
	if res.QueryKind == intent.QueryCategory {
		entries, err := a.ledger.QueryByCategory(ctx, a.org(req), res.Category)
		if err != nil {
			return "", err
		}
		var total float64
		for _, e := range entries {
			total += e.Amount
		}
		return fmt.Sprintf("Spending on %q: $%.2f across %d entries.", res.Category, total, len(entries)), nil
	}

	sum, err := a.ledger.Summary(ctx, a.org(req))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Budget summary for %s: total $%.2f.", sum.Org, sum.Total)
	for cat, sub := range sum.ByCategory {
		fmt.Fprintf(&b, " %s: $%.2f.", cat, sub)
	}
	return b.String(), nil
}

// grounding consults the knowledge override store first; a hit is used
// verbatim and suppresses the live lookup entirely for this turn. The web
// search only runs for messages that read as factual questions and only when
// a searcher is configured, and its failures degrade to no grounding rather
// than aborting the turn.
func (a *Assembler) grounding(ctx context.Context, message string, now time.Time) (string, error) {
	fact, err := a.knowledge.Lookup(ctx, message, now)
	if err != nil {
		return "", err
	}
	if fact != nil {
		return fact.Text, nil
	}

	if a.searcher == nil || !looksFactual(message) {
		return "", nil
	}
	answer, err := a.searcher.Search(ctx, message)
	if err != nil {
		a.log.Warn().Err(err).Msg("live lookup failed; continuing without grounding")
		return "", nil
	}
	return answer, nil
}

var questionLeads = []string{"what", "who", "when", "where", "why", "how", "which"}

func looksFactual(message string) bool {
	if strings.Contains(message, "?") {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, lead := range questionLeads {
		if strings.HasPrefix(lower, lead+" ") {
			return true
		}
	}
	return false
}

// buildPrompt lays out the augmented prompt: grounding fact, action
// confirmation, due reminders, recent history oldest-first, then the raw
// user message.
func buildPrompt(grounding, confirmation string, due []*model.Reminder, history []*model.ConversationTurn, message string) string {
	var b strings.Builder

	if grounding != "" {
		fmt.Fprintf(&b, "Known fact (authoritative, use verbatim): %s\n\n", grounding)
	}
	if confirmation != "" {
		fmt.Fprintf(&b, "Action taken this turn: %s\n\n", confirmation)
	}
	if len(due) > 0 {
		b.WriteString("Due reminders to surface to the user:\n")
		for _, r := range due {
			fmt.Fprintf(&b, "- %s (due %s)\n", r.Text, r.DueTime.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		// History arrives newest-first from the store; replay oldest-first.
		for i := len(history) - 1; i >= 0; i-- {
			t := history[i]
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.UserMessage, t.Response)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", message)
	return b.String()
}
