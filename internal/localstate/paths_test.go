package localstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)

	got, err := DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, dbFilename), got)
}

func TestResolveSQLitePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)

	got, err := ResolveSQLitePath("/var/lib/concierge/custom.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/concierge/custom.db", got)

	got, err = ResolveSQLitePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, dbFilename), got)
}
