// Package localstate resolves where the local deployment keeps its data and
// seeds the accounts a fresh developer install needs.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "CONCIERGE_STATE_HOME" // override for tests
	dirName    = ".concierge"           // default under $HOME
	dbFilename = "concierge.db"
)

// DataDir returns the directory where local state is stored (~/.concierge).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the absolute path to the SQLite database file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

// ResolveSQLitePath returns the configured database path, or the default
// location under the state directory when configuration leaves it empty.
// The default keeps a dev install zero-config: point CONCIERGE_STATE_HOME
// somewhere else to relocate all local state at once.
func ResolveSQLitePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return DBPath()
}
