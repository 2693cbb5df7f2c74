// Package knowledge holds admin-authored facts that take priority over live
// lookups. Matching is keyword overlap: it is a priority rule, not a merge.
// A hit is used verbatim and suppresses the web lookup for that turn.
package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Store wraps fact persistence with authorization and lookup scoring.
type Store struct {
	facts store.Facts
	ttl   time.Duration
}

// NewStore builds a knowledge store with the configured fact retention.
func NewStore(facts store.Facts, ttl time.Duration) *Store {
	return &Store{facts: facts, ttl: ttl}
}

// Set appends an AdminFact. Only admins may author facts; the check runs
// before any write.
func (s *Store) Set(ctx context.Context, role model.Role, factText string, now time.Time) (*model.AdminFact, error) {
	if role != model.RoleAdmin {
		return nil, fmt.Errorf("set fact: %w", model.ErrUnauthorized)
	}
	factText = strings.TrimSpace(factText)
	if factText == "" {
		return nil, fmt.Errorf("set fact: empty text: %w", model.ErrValidation)
	}
	return s.facts.Create(ctx, &model.AdminFact{
		Text:           factText,
		CreationTime:   now,
		ExpirationTime: now.Add(s.ttl),
	})
}

// Lookup scans non-expired facts for keyword overlap with the query and
// returns the best match, or nil when nothing overlaps. Facts are scanned
// newest first, so ties go to the most recent fact (supersede semantics).
func (s *Store) Lookup(ctx context.Context, query string, now time.Time) (*model.AdminFact, error) {
	facts, err := s.facts.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("lookup facts: %w", err)
	}

	queryWords := keywords(query)
	if len(queryWords) == 0 {
		return nil, nil
	}

	var best *model.AdminFact
	bestScore := 0
	for _, f := range facts {
		score := overlap(queryWords, keywords(f.Text))
		if score > bestScore {
			best = f
			bestScore = score
		}
	}
	return best, nil
}

// stopwords are too common to signal topical overlap.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"be": true, "to": true, "of": true, "in": true, "on": true, "at": true,
	"and": true, "or": true, "it": true, "my": true, "what": true, "whats": true,
	"how": true, "who": true, "when": true, "where": true, "do": true, "does": true,
}

func keywords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, "?!.,:;\"'")
		if len(w) < 2 || stopwords[w] {
			continue
		}
		out[w] = true
	}
	return out
}

func overlap(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}
