package postgres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestMigratorLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"010_bills.sql":  "CREATE TABLE bills ();",
		"002_staff.sql":  "CREATE TABLE staff ();",
		"001_init.sql":   "CREATE TABLE doctors ();",
		"README.md":      "docs",
		"draft.sql":      "SELECT 1;",
		"abc_notnum.sql": "SELECT 1;",
	})

	migrations, err := NewMigrator(nil, dir).Load()
	require.NoError(t, err)

	require.Len(t, migrations, 3)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE doctors ();", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, 10, migrations[2].Version)
}

func TestMigratorLoadRejectsDuplicateVersions(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"001_a.sql":  "SELECT 1;",
		"0001_b.sql": "SELECT 2;",
	})

	_, err := NewMigrator(nil, dir).Load()
	assert.ErrorContains(t, err, "share version 1")
}

func TestMigratorLoadMissingDir(t *testing.T) {
	_, err := NewMigrator(nil, filepath.Join(t.TempDir(), "missing")).Load()
	assert.Error(t, err)
}

func TestRepositoryMigrationsLoad(t *testing.T) {
	migrations, err := NewMigrator(nil, filepath.Join("..", "..", "..", "migrations")).Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, m.Name)
		assert.NotEmpty(t, m.SQL)
	}
}
