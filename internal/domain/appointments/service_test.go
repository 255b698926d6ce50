package appointments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
)

var clinic = time.FixedZone("clinic", -3*60*60)

type fixture struct {
	appts *appointments.Service
	petID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, clinic)
	st := memory.New()
	apptsSvc := appointments.NewService(st.Appointments(), st.Documents(),
		appointments.WithLocation(clinic),
		appointments.WithClock(func() time.Time { return now }),
	)
	petsSvc := pets.NewService(st.Pets(), apptsSvc, st.Documents())
	ownersSvc := owners.NewService(st.Owners(), petsSvc)

	o, err := ownersSvc.Create(ctx, owners.Input{Name: "Ana", Phone: "1"})
	require.NoError(t, err)
	p, err := petsSvc.Create(ctx, pets.CreateInput{OwnerID: o.ID, Name: "Milo", Species: "dog"})
	require.NoError(t, err)

	return fixture{appts: apptsSvc, petID: p.ID}
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appts.Create(ctx, appointments.CreateInput{ScheduledAt: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.appts.Create(ctx, appointments.CreateInput{PetID: f.petID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.appts.Create(ctx, appointments.CreateInput{PetID: "missing", ScheduledAt: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrReference))

	a, err := f.appts.Create(ctx, appointments.CreateInput{
		PetID:       f.petID,
		ScheduledAt: time.Date(2026, 3, 10, 15, 0, 0, 0, clinic),
		Reason:      "  control  ",
	})
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusScheduled, a.Status)
	assert.Equal(t, "control", a.Reason)
	assert.NotNil(t, a.Consultation)
}

func TestSetStatusPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.appts.Create(ctx, appointments.CreateInput{
		PetID:       f.petID,
		ScheduledAt: time.Date(2026, 3, 10, 15, 0, 0, 0, clinic),
	})
	require.NoError(t, err)

	// Cita inexistente: NotFound aunque el destino sea inválido.
	_, err = f.appts.SetStatus(ctx, "missing", "bogus")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.appts.SetStatus(ctx, a.ID, "bogus")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	_, err = f.appts.SetStatus(ctx, a.ID, "scheduled")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	done, err := f.appts.SetStatus(ctx, a.ID, "NO_SHOW")
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusNoShow, done.Status)

	_, err = f.appts.SetStatus(ctx, a.ID, "completed")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	got, err := f.appts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusNoShow, got.Status)
}

func TestListTodayUsesClinicDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	at := func(day, hour int) time.Time { return time.Date(2026, 3, day, hour, 0, 0, 0, clinic) }
	var todayIDs []string
	for _, when := range []time.Time{at(10, 0), at(10, 23), at(9, 23), at(11, 0)} {
		a, err := f.appts.Create(ctx, appointments.CreateInput{PetID: f.petID, ScheduledAt: when})
		require.NoError(t, err)
		if when.Day() == 10 {
			todayIDs = append(todayIDs, a.ID)
		}
	}

	items, err := f.appts.ListToday(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, todayIDs, []string{items[0].ID, items[1].ID})
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.appts.List(context.Background(), appointments.ListInput{Status: "done"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
