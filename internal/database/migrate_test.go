package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}

	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}

	assert.Equal(t, ups, downs)
}

func TestMonthlyBudgetIndexExists(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000002_create_accounts.up.sql")
	require.NoError(t, err)

	sql := string(b)
	assert.Contains(t, sql, "idx_accounts_one_monthly_budget_per_user")
	assert.Contains(t, sql, "WHERE account_type = 'monthly_budget'")
}
