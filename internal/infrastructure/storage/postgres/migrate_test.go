package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/ledger?sslmode=disable", migrateURL("postgres://u:p@db:5432/ledger?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/ledger", migrateURL("postgresql://u@db/ledger"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/0001_init.up.sql")
	assert.Contains(t, names, "migrations/0001_init.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CONSTRAINT "+NonNegativeConstraint+" CHECK (quantity >= 0)")
}
