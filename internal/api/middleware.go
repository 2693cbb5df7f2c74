package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware verifies the bearer credential on every request and stashes
// the resulting identity in the request context. Requests that fail
// verification never reach a handler.
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			id, err := verifier.Verify(r.Context(), cred)
			if err != nil {
				respond.WriteUnauthorized(w, "invalid credential")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the verified identity set by AuthMiddleware.
func IdentityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}
