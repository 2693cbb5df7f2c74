// Package intent classifies free-text messages into tagged intents using an
// ordered list of trigger-phrase detectors. The first matching detector wins;
// there are no multi-intent messages. Matching is case-insensitive substring
// and pattern matching, not natural-language understanding; the Classifier
// interface exists so a model-based implementation can replace this one
// without touching routing logic.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/witlab/concierge/internal/model"
)

// Kind tags the classified purpose of a message.
type Kind string

const (
	None           Kind = "none"
	ReminderCreate Kind = "reminder_create"
	BudgetTrack    Kind = "budget_track"
	BudgetQuery    Kind = "budget_query"
	KnowledgeSet   Kind = "knowledge_set"
)

// QueryKind distinguishes budget query flavors.
type QueryKind string

const (
	QuerySummary  QueryKind = "summary"
	QueryCategory QueryKind = "category"
)

// Result is the tagged outcome of classification. Only the fields relevant
// to Kind are populated.
type Result struct {
	Kind Kind

	// ReminderCreate
	ReminderText string
	DueOffset    time.Duration

	// BudgetTrack
	Amount   float64
	Category string
	Duration string

	// BudgetQuery
	QueryKind QueryKind

	// KnowledgeSet
	Fact string
}

// Classifier turns a raw message and the caller's role into a Result.
type Classifier interface {
	Classify(message string, role model.Role) Result
}

// PhraseClassifier is the deterministic phrase-table implementation.
type PhraseClassifier struct {
	defaultOffset time.Duration
}

// NewPhraseClassifier builds a classifier with the configured fallback offset
// for reminder messages that carry no recognizable time expression.
func NewPhraseClassifier(defaultOffset time.Duration) *PhraseClassifier {
	return &PhraseClassifier{defaultOffset: defaultOffset}
}

// Detector tables. Priority order is fixed: knowledge-set phrases beat
// budget-query phrases beat budget-track phrases beat reminder phrases.
var (
	knowledgePhrases   = []string{"remember that", "admin knowledge:", "permanently remember", "set knowledge:"}
	budgetQueryPhrases = []string{"budget summary", "total spending", "how much on"}
	budgetTrackPhrases = []string{"i spent $", "paid $", "bought $"}
	reminderPhrases    = []string{"remind me to", "don't forget to", "i need to remember", "set a reminder for"}
)

var (
	amountRx  = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
	inHoursRx = regexp.MustCompile(`(?i)\bin (\d+) hours?\b`)
	inMinsRx  = regexp.MustCompile(`(?i)\bin (\d+) minutes?\b`)
)

// Classify evaluates the detector list top to bottom. Admin-only intents
// degrade to None for non-admins so the text flows through as ordinary
// conversation rather than failing the request.
func (c *PhraseClassifier) Classify(message string, role model.Role) Result {
	lower := strings.ToLower(message)

	if phrase, ok := matchFirst(lower, knowledgePhrases); ok {
		if role != model.RoleAdmin {
			return Result{Kind: None}
		}
		rest, ok := afterPhrase(message, phrase)
		if !ok {
			return Result{Kind: None}
		}
		return Result{Kind: KnowledgeSet, Fact: strings.TrimSpace(strings.TrimLeft(rest, ": "))}
	}

	if phrase, ok := matchFirst(lower, budgetQueryPhrases); ok {
		if role != model.RoleAdmin {
			return Result{Kind: None}
		}
		if phrase == "how much on" {
			return Result{Kind: BudgetQuery, QueryKind: QueryCategory, Category: trailingWord(lower, phrase)}
		}
		return Result{Kind: BudgetQuery, QueryKind: QuerySummary}
	}

	if _, ok := matchFirst(lower, budgetTrackPhrases); ok {
		amount, rest, ok := extractAmount(lower)
		if !ok {
			// Malformed amount is not an error; treat as plain conversation.
			return Result{Kind: None}
		}
		category, duration := extractCategoryDuration(rest)
		return Result{Kind: BudgetTrack, Amount: amount, Category: category, Duration: duration}
	}

	if phrase, ok := matchFirst(lower, reminderPhrases); ok {
		rest, ok := afterPhrase(message, phrase)
		if !ok {
			return Result{Kind: None}
		}
		offset := c.extractOffset(lower)
		return Result{Kind: ReminderCreate, ReminderText: stripTimeExpressions(rest), DueOffset: offset}
	}

	return Result{Kind: None}
}

func matchFirst(lower string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// foldIndex locates phrase (lowercase ASCII) in s case-insensitively and
// returns the byte offsets of the match within s, or (-1, -1). Offsets are
// computed rune by rune on s itself; lowering a copy of s can change its byte
// length (e.g. U+023A grows from two bytes to three) and offsets taken from
// such a copy must never be used to slice s.
func foldIndex(s, phrase string) (int, int) {
	if phrase == "" {
		return -1, -1
	}
	for i := range s {
		j := i
		matched := true
		for k := 0; k < len(phrase); k++ {
			r, size := utf8.DecodeRuneInString(s[j:])
			if size == 0 || unicode.ToLower(r) != rune(phrase[k]) {
				matched = false
				break
			}
			j += size
		}
		if matched {
			return i, j
		}
	}
	return -1, -1
}

// afterPhrase returns the text following the first case-insensitive match of
// phrase, preserving the original casing of the message.
func afterPhrase(original, phrase string) (string, bool) {
	_, end := foldIndex(original, phrase)
	if end < 0 {
		return "", false
	}
	return original[end:], true
}

// extractAmount finds the first dollar amount; ambiguity between several
// amounts is resolved by position, not semantics. Returns the text that
// follows the amount for category/duration extraction.
func extractAmount(lower string) (float64, string, bool) {
	loc := amountRx.FindStringSubmatchIndex(lower)
	if loc == nil {
		return 0, "", false
	}
	raw := lower[loc[2]:loc[3]]
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		return 0, "", false
	}
	return amount, lower[loc[1]:], true
}

// extractCategoryDuration pulls category and duration phrases from the
// trailing clauses after the amount, e.g. "today on marketing for 3 months".
func extractCategoryDuration(rest string) (string, string) {
	category := "general"
	duration := ""
	if i := strings.Index(rest, " for "); i >= 0 {
		duration = strings.TrimSpace(rest[i+len(" for "):])
		rest = rest[:i]
	}
	if i := strings.Index(rest, " on "); i >= 0 {
		category = strings.TrimSpace(rest[i+len(" on "):])
	}
	if category == "" {
		category = "general"
	}
	return category, duration
}

// extractOffset maps relative-time expressions to fixed offsets. This is a
// deterministic mapping, not a calendar-aware parser; anything unrecognized
// falls back to the configured default.
func (c *PhraseClassifier) extractOffset(lower string) time.Duration {
	if m := inHoursRx.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(n) * time.Hour
		}
	}
	if m := inMinsRx.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	if strings.Contains(lower, "tomorrow") {
		return 24 * time.Hour
	}
	return c.defaultOffset
}

// stripTimeExpressions removes the recognized time expression so the stored
// reminder text reads naturally. The regexes are case-insensitive and run
// directly on text, so the offsets they report are valid in it.
func stripTimeExpressions(text string) string {
	for _, rx := range []*regexp.Regexp{inHoursRx, inMinsRx} {
		if loc := rx.FindStringIndex(text); loc != nil {
			text = text[:loc[0]] + text[loc[1]:]
		}
	}
	if s, e := foldIndex(text, "tomorrow"); s >= 0 {
		text = text[:s] + text[e:]
	}
	return strings.TrimSpace(text)
}

// trailingWord extracts the clause following the phrase, cut at the first
// sentence punctuation.
func trailingWord(lower, phrase string) string {
	idx := strings.Index(lower, phrase)
	rest := strings.TrimSpace(lower[idx+len(phrase):])
	if i := strings.IndexAny(rest, "?!.,"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
