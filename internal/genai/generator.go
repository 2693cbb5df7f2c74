// Package genai is the narrow interface to the external generative text
// backend. The backend is treated as a pure function from prompt to text;
// no side effects are assumed and nothing is retried here.
package genai

import "context"

// Generator produces text for an augmented prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
