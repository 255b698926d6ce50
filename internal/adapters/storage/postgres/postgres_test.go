package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/adapters/storage/storagetest"
)

// Requiere una base descartable: TEST_DB_DSN=postgres://... go test ./...
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, db))

	storagetest.Run(t, func(t *testing.T) storagetest.Backend {
		_, err := db.ExecContext(ctx, `TRUNCATE appointments, pets, owners`)
		require.NoError(t, err)
		return postgres.New(db)
	})
}
