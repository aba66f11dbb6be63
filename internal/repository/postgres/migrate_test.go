package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/finos?sslmode=disable", "pgx5://u:p@localhost:5432/finos?sslmode=disable"},
		{"postgresql://localhost/finos", "pgx5://localhost/finos"},
		{"pgx5://localhost/finos", "pgx5://localhost/finos"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrateURL(tt.in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "NUMERIC(14, 2)")
}
