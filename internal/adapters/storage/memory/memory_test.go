package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/adapters/storage/storagetest"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Backend {
		return memory.New()
	})
}

func TestStoreDoesNotAliasDocuments(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	contact := document.Document{"tags": []any{"vip"}}
	o := owners.Owner{ID: "o-1", Name: "Ana", Contact: contact}
	require.NoError(t, s.Owners().Create(ctx, o))

	// mutar lo que se pasó no cambia lo guardado
	contact["tags"].([]any)[0] = "changed"

	got, err := s.Owners().GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, []any{"vip"}, got.Contact["tags"])

	// mutar lo leído tampoco
	got.Contact["tags"] = "x"
	again, err := s.Documents().Get(ctx, document.TableOwners, "o-1")
	require.NoError(t, err)
	assert.Equal(t, []any{"vip"}, again["tags"])
}
