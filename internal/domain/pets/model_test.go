package pets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vet-clinic/internal/domain/document"
)

func TestApplyPatch(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := created.Add(time.Hour)
	bd := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	w := 4.2

	base := Pet{
		ID:        "p1",
		OwnerID:   "o1",
		Name:      "Milo",
		Species:   SpeciesCat,
		BirthDate: &bd,
		WeightKg:  &w,
		Medical:   document.Document{"allergies": []any{"pollen"}, "chip": "A1"},
		CreatedAt: created,
		UpdatedAt: created,
	}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		got := base.Apply(Patch{}, at)
		assert.Equal(t, base, got)
	})

	t.Run("fields and shallow merge", func(t *testing.T) {
		name := "Michi"
		got := base.Apply(Patch{
			Name:    &name,
			Medical: document.Document{"chip": nil, "neutered": true},
		}, at)

		assert.Equal(t, "Michi", got.Name)
		assert.Equal(t, "o1", got.OwnerID)
		assert.Equal(t, at, got.UpdatedAt)
		assert.Equal(t, document.Document{
			"allergies": []any{"pollen"},
			"chip":      nil,
			"neutered":  true,
		}, got.Medical)
		// el original no se toca
		assert.Equal(t, "A1", base.Medical["chip"])
	})

	t.Run("birth_date null clears", func(t *testing.T) {
		got := base.Apply(Patch{BirthDate: PatchDate{Present: true}}, at)
		assert.Nil(t, got.BirthDate)
		assert.Equal(t, at, got.UpdatedAt)
	})

	t.Run("weight is copied", func(t *testing.T) {
		nw := 5.0
		got := base.Apply(Patch{WeightKg: &nw}, at)
		nw = 9
		assert.Equal(t, 5.0, *got.WeightKg)
	})
}
