// Package websearch is the live lookup collaborator, consulted only when the
// knowledge override store yields no match for a factual query.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Searcher returns a short textual answer for a query, or "" when the
// backend has nothing useful.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// DuckDuckGoClient uses the instant-answer API (free, no API key).
type DuckDuckGoClient struct {
	client *resty.Client
}

// NewDuckDuckGoClient builds a client for the given base URL.
func NewDuckDuckGoClient(baseURL string) *DuckDuckGoClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &DuckDuckGoClient{client: c}
}

type instantAnswer struct {
	AbstractText string `json:"AbstractText"`
	Answer       string `json:"Answer"`
	Heading      string `json:"Heading"`
}

// Search queries the instant-answer endpoint. An empty result is not an
// error; the caller simply proceeds without grounding.
func (d *DuckDuckGoClient) Search(ctx context.Context, query string) (string, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":             query,
			"format":        "json",
			"no_html":       "1",
			"skip_disambig": "1",
		}).
		Get("/")
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("search status %d", resp.StatusCode())
	}

	var out instantAnswer
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Answer != "" {
		return out.Answer, nil
	}
	return out.AbstractText, nil
}
