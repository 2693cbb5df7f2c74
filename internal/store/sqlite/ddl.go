package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"
)

//go:embed schema.sql
var ddlFile string

// Bootstrap applies the schema statements. Statements are idempotent
// (IF NOT EXISTS) so repeat runs are safe.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddlStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func ddlStatements() []string {
	parts := strings.Split(ddlFile, ";")
	var out []string
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
