package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunExitCodes(t *testing.T) {
	t.Run("missing filename", func(t *testing.T) {
		var stderr bytes.Buffer
		assert.Equal(t, 1, run(nil, &stderr))
		assert.Contains(t, stderr.String(), "no filename in arguments")
	})

	t.Run("too many arguments", func(t *testing.T) {
		var stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{"a.db", "b.db"}, &stderr))
	})

	t.Run("unknown flag", func(t *testing.T) {
		var stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{"--nope", "a.db"}, &stderr))
	})

	t.Run("missing parent directory", func(t *testing.T) {
		var stderr bytes.Buffer
		path := filepath.Join(t.TempDir(), "missing", "aero.sqlite3")
		assert.Equal(t, 2, run([]string{path, "--log-level=error"}, &stderr))
		assert.Contains(t, stderr.String(), "incorrect path to file")
	})

	t.Run("success", func(t *testing.T) {
		var stderr bytes.Buffer
		path := filepath.Join(t.TempDir(), "aero.sqlite3")
		assert.Equal(t, 0, run([]string{path, "--log-level=error"}, &stderr))
		assert.FileExists(t, path)
	})

	t.Run("strict load with unknown reference", func(t *testing.T) {
		dir := t.TempDir()
		seedFile := filepath.Join(dir, "data.yaml")
		require.NoError(t, os.WriteFile(seedFile, []byte(`
companies: [Acme Air]
planes:
  - {name: Jet1, seats: 2, company: Ghost Air}
`), 0o600))

		var stderr bytes.Buffer
		path := filepath.Join(dir, "aero.sqlite3")
		assert.Equal(t, 3, run([]string{path, "--strict", "--seed-file", seedFile, "--log-level=error"}, &stderr))
		assert.Contains(t, stderr.String(), "unresolved seed reference")
	})

	t.Run("permissive load prints warnings", func(t *testing.T) {
		dir := t.TempDir()
		seedFile := filepath.Join(dir, "data.yaml")
		require.NoError(t, os.WriteFile(seedFile, []byte(`
companies: [Acme Air]
planes:
  - {name: Jet1, seats: 2, company: Ghost Air}
`), 0o600))

		var stderr bytes.Buffer
		path := filepath.Join(dir, "aero.sqlite3")
		assert.Equal(t, 0, run([]string{path, "--seed-file", seedFile, "--log-level=error"}, &stderr))
		assert.Contains(t, stderr.String(), `unknown company "Ghost Air"`)
	})
}

func TestRunBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aero.sqlite3")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{path, "--backup", "--log-level=error"}, &stderr))

	backups, err := filepath.Glob(path + ".*" + backupFileExt)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	b, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "previous", string(b))
}

func TestPruneOldBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aero.sqlite3")
	names := []string{
		"aero.sqlite3.20240101-000000.000000000.bak",
		"aero.sqlite3.20240102-000000.000000000.bak",
		"aero.sqlite3.20240103-000000.000000000.bak",
		"aero.sqlite3.20240104-000000.000000000.bak",
		"other.sqlite3.20240101-000000.000000000.bak",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o600))
	}

	pruneOldBackups(path, 2, zap.NewNop().Sugar())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.Equal(t, []string{
		"aero.sqlite3.20240103-000000.000000000.bak",
		"aero.sqlite3.20240104-000000.000000000.bak",
		"other.sqlite3.20240101-000000.000000000.bak",
	}, left)
}
