package localstate

import (
	"context"
	"errors"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Seed identities for local development. The identity provider owns users in
// cloud deployments; locally these two cover both roles.
var devUsers = []model.User{
	{UserID: "local-admin", Role: model.RoleAdmin},
	{UserID: "local-user", Role: model.RoleMember},
}

// EnsureDefaultUsers inserts the dev users if they are absent. No-op for
// users that already exist.
func EnsureDefaultUsers(ctx context.Context, st store.Store) error {
	for _, u := range devUsers {
		_, err := st.Users().Get(ctx, u.UserID)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		if _, err := st.Users().Put(ctx, &u); err != nil {
			return err
		}
	}
	return nil
}
