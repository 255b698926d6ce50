package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/sqlite"
	"vet-clinic/internal/adapters/storage/storagetest"
	"vet-clinic/internal/domain/owners"
)

func newStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	s := sqlite.New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Backend {
		return newStore(t, ":memory:")
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.db")
	ctx := context.Background()

	s := newStore(t, path)
	require.NoError(t, s.Owners().Create(ctx, owners.Owner{ID: "o-1", Name: "Ana"}))
	require.NoError(t, s.Close())

	// reabrir y migrar de nuevo no pierde datos
	again := newStore(t, path)
	got, err := again.Owners().GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}
