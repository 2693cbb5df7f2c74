// Package auth is the narrow interface to the external identity collaborator.
// The engine never manages identity; it only maps a request credential to a
// user identifier and role. Requests that fail verification never reach the
// core components.
package auth

import (
	"context"
	"fmt"

	"github.com/witlab/concierge/internal/model"
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
}

// Verifier validates a request credential and returns the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// StaticVerifier maps bearer tokens to identities. It stands in for the
// managed identity provider in local and test deployments.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier builds a verifier over a fixed token table.
func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// Verify resolves the credential or rejects the request.
func (v *StaticVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("missing credential: %w", model.ErrUnauthorized)
	}
	id, ok := v.tokens[credential]
	if !ok {
		return nil, fmt.Errorf("unknown credential: %w", model.ErrUnauthorized)
	}
	return &id, nil
}

// DevVerifier accepts any non-empty credential of the form "<userId>:<role>".
// It exists for local development only and must never ship to production.
type DevVerifier struct{}

// Verify parses the dev credential format.
func (DevVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("missing credential: %w", model.ErrUnauthorized)
	}
	userID, role := credential, model.RoleMember
	for i := 0; i < len(credential); i++ {
		if credential[i] == ':' {
			userID = credential[:i]
			if credential[i+1:] == string(model.RoleAdmin) {
				role = model.RoleAdmin
			}
			break
		}
	}
	if userID == "" {
		return nil, fmt.Errorf("empty user in credential: %w", model.ErrUnauthorized)
	}
	return &Identity{UserID: userID, Role: role}, nil
}
