package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/tienda?sslmode=disable":   "pgx5://u:p@db:5432/tienda?sslmode=disable",
		"postgresql://u:p@db:5432/tienda?sslmode=disable": "pgx5://u:p@db:5432/tienda?sslmode=disable",
		"pgx5://u:p@db/tienda":                            "pgx5://u:p@db/tienda",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 4)
}
