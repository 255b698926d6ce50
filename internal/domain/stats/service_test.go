package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/appointments"
)

type fakeReader struct {
	got  Window
	snap Snapshot
}

func (f *fakeReader) Compute(_ context.Context, w Window) (Snapshot, error) {
	f.got = w
	return f.snap, nil
}

func TestComputeWindowAndNormalize(t *testing.T) {
	loc := time.FixedZone("clinic", -3*60*60)
	now := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC) // 22:00 del 10 en la clínica

	r := &fakeReader{snap: Snapshot{
		TotalPets: 4,
		ByStatus:  map[appointments.Status]int{appointments.StatusCompleted: 2},
		PetsBySpecies: []SpeciesCount{
			{Species: "cat", Total: 1},
			{Species: "dog", Total: 2},
			{Species: "bird", Total: 1},
		},
	}}

	snap, err := NewService(r, loc).WithClock(func() time.Time { return now }).Compute(context.Background())
	require.NoError(t, err)

	assert.True(t, r.got.DayStart.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)))
	assert.True(t, r.got.DayEnd.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)))
	assert.True(t, r.got.Now.Equal(now))

	assert.Equal(t, map[appointments.Status]int{
		appointments.StatusScheduled: 0,
		appointments.StatusCompleted: 2,
		appointments.StatusCancelled: 0,
		appointments.StatusNoShow:    0,
	}, snap.ByStatus)
	assert.Equal(t, []SpeciesCount{
		{Species: "dog", Total: 2},
		{Species: "bird", Total: 1},
		{Species: "cat", Total: 1},
	}, snap.PetsBySpecies)
}

func TestComputeEmpty(t *testing.T) {
	snap, err := NewService(&fakeReader{}, time.UTC).Compute(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.ByStatus, 4)
	assert.NotNil(t, snap.PetsBySpecies)
	assert.Empty(t, snap.PetsBySpecies)
}

func TestToResponse(t *testing.T) {
	resp := ToResponse(Snapshot{
		TotalOwners:   1,
		ByStatus:      map[appointments.Status]int{appointments.StatusNoShow: 3},
		PetsBySpecies: []SpeciesCount{{Species: "dog", Total: 1}},
	})
	assert.Equal(t, 1, resp.TotalOwners)
	assert.Equal(t, 3, resp.ByStatus["no_show"])
	assert.Equal(t, []speciesCountResponse{{Species: "dog", Total: 1}}, resp.PetsBySpecies)
}
