// Package factory builds driver-specific dependencies from configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/witlab/concierge/internal/config"
	"github.com/witlab/concierge/internal/localstate"
	storepkg "github.com/witlab/concierge/internal/store"
	storepg "github.com/witlab/concierge/internal/store/postgres"
	storesqlite "github.com/witlab/concierge/internal/store/sqlite"
)

// NewStore returns the store.Store implementation selected by cfg.DBDriver.
// The sqlite driver bootstraps its schema inline; postgres expects the schema
// to exist (deploy-time migrations) and only verifies connectivity.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		path, err := localstate.ResolveSQLitePath(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite path: %w", err)
		}
		st, err := storesqlite.New(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := localstate.EnsureDefaultUsers(ctx, st); err != nil {
			return nil, fmt.Errorf("seed dev users: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Str("path", path).Msg("store ready")
		return st, nil

	case "postgres":
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("store ready")
		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
