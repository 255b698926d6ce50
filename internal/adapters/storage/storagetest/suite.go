// Package storagetest tiene la suite de contrato que corre contra cada adapter de storage.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
)

// Backend es lo mínimo que la suite necesita de un adapter.
type Backend interface {
	Owners() owners.Repository
	Pets() pets.Repository
	Appointments() appointments.Repository
	Documents() document.Store
	Stats() stats.Reader
}

// Open devuelve un backend vacío para cada subtest.
type Open func(t *testing.T) Backend

var (
	clinic = time.FixedZone("clinic", -3*60*60)
	// mediodía en la clínica
	now = time.Date(2026, time.March, 10, 12, 0, 0, 0, clinic)
)

type env struct {
	b     Backend
	docs  document.Store
	own   *owners.Service
	pets  *pets.Service
	appts *appointments.Service
	stats *stats.Service
}

func newEnv(b Backend) env {
	clock := func() time.Time { return now }
	appts := appointments.NewService(b.Appointments(), b.Documents(),
		appointments.WithClock(clock), appointments.WithLocation(clinic))
	petSvc := pets.NewService(b.Pets(), b.Appointments(), b.Documents())

	return env{
		b:     b,
		docs:  b.Documents(),
		own:   owners.NewService(b.Owners(), b.Pets()),
		pets:  petSvc,
		appts: appts,
		stats: stats.NewService(b.Stats(), clinic).WithClock(clock),
	}
}

// Run corre toda la suite.
func Run(t *testing.T, open Open) {
	tests := []struct {
		name string
		fn   func(t *testing.T, e env)
	}{
		{"Scenario", testScenario},
		{"OwnerCRUD", testOwnerCRUD},
		{"OwnerEmailConflict", testOwnerEmailConflict},
		{"OwnerDeleteCascades", testOwnerDeleteCascades},
		{"PetCreateRequiresOwner", testPetCreateRequiresOwner},
		{"PetUpdateMergesMedical", testPetUpdateMergesMedical},
		{"PetUpdateFields", testPetUpdateFields},
		{"PetListFilters", testPetListFilters},
		{"PetDeleteCascades", testPetDeleteCascades},
		{"AppointmentCreateRequiresPet", testAppointmentCreateRequiresPet},
		{"AppointmentStateMachine", testAppointmentStateMachine},
		{"AppointmentConcurrentTransition", testAppointmentConcurrentTransition},
		{"AppointmentListToday", testAppointmentListToday},
		{"AppointmentListFilters", testAppointmentListFilters},
		{"AppointmentAgendaJoinsPetAndOwner", testAppointmentAgendaJoinsPetAndOwner},
		{"AppointmentDelete", testAppointmentDelete},
		{"DuplicateIDIsConflict", testDuplicateIDIsConflict},
		{"Documents", testDocuments},
		{"DocumentQueries", testDocumentQueries},
		{"DocumentLargeIntegers", testDocumentLargeIntegers},
		{"Stats", testStats},
		{"StatsPetCountMatchesList", testStatsPetCountMatchesList},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newEnv(open(t)))
		})
	}
}

// ---- helpers ----

func mustOwner(t *testing.T, e env, name string) owners.Owner {
	t.Helper()
	o, err := e.own.Create(context.Background(), owners.Input{Name: name, Phone: "555-0100"})
	require.NoError(t, err)
	return o
}

func mustPet(t *testing.T, e env, ownerID, name, species string, medical document.Document) pets.Pet {
	t.Helper()
	p, err := e.pets.Create(context.Background(), pets.CreateInput{
		OwnerID: ownerID,
		Name:    name,
		Species: species,
		Medical: medical,
	})
	require.NoError(t, err)
	return p
}

func mustAppt(t *testing.T, e env, petID string, at time.Time, consult document.Document) appointments.Appointment {
	t.Helper()
	a, err := e.appts.Create(context.Background(), appointments.CreateInput{
		PetID:        petID,
		ScheduledAt:  at,
		Reason:       "control",
		Consultation: consult,
	})
	require.NoError(t, err)
	return a
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func petID(p pets.Pet) string                  { return p.ID }
func ownerID(o owners.Owner) string            { return o.ID }
func apptID(a appointments.Appointment) string { return a.ID }
func entryID(a appointments.AgendaEntry) string { return a.ID }

// ---- tests ----

func testScenario(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", document.Document{"alergias": []any{"penicilina"}})
	appt := mustAppt(t, e, rex.ID, now.Add(2*time.Hour), document.Document{"pago": "pendiente"})

	today, err := e.appts.ListToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{appt.ID}, ids(today, entryID))

	done, err := e.appts.SetStatus(ctx, appt.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusCompleted, done.Status)

	_, err = e.appts.SetStatus(ctx, appt.ID, "completed")
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	require.NoError(t, e.own.Delete(ctx, ana.ID))

	_, err = e.pets.Get(ctx, rex.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.appts.GetByID(ctx, appt.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testOwnerCRUD(t *testing.T, e env) {
	ctx := context.Background()

	ana, err := e.own.Create(ctx, owners.Input{
		Name:    "  Ana Pérez ",
		Phone:   "555-0101",
		Email:   "Ana@Example.com",
		Contact: document.Document{"contacto_preferido": "whatsapp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", ana.Name)
	assert.Equal(t, "ana@example.com", ana.Email)

	luis := mustOwner(t, e, "Luis")

	got, err := e.own.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", got.Name)
	assert.Equal(t, "whatsapp", got.Contact["contacto_preferido"])
	assert.Empty(t, got.Pets)

	p1 := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	p2 := mustPet(t, e, ana.ID, "Mishi", "cat", nil)
	got, err = e.own.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID}, ids(got.Pets, petID))

	all, err := e.own.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{ana.ID, luis.ID}, ids(all, ownerID))

	found, err := e.own.List(ctx, "EXAMPLE")
	require.NoError(t, err)
	assert.Equal(t, []string{ana.ID}, ids(found, ownerID))

	found, err = e.own.List(ctx, "lu")
	require.NoError(t, err)
	assert.Equal(t, []string{luis.ID}, ids(found, ownerID))

	updated, err := e.own.Update(ctx, ana.ID, owners.Input{
		Name:    "Ana P.",
		Phone:   "555-0199",
		Contact: document.Document{"telefono_emergencia": "555-0000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Email)

	got, err = e.own.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana P.", got.Name)
	assert.Equal(t, "555-0199", got.Phone)
	assert.Equal(t, "", got.Email)
	// update es de registro completo: el documento se reemplaza
	assert.Equal(t, document.Document{"telefono_emergencia": "555-0000"}, got.Contact)

	_, err = e.own.Update(ctx, "missing", owners.Input{Name: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.own.Create(ctx, owners.Input{Name: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.own.Get(ctx, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testOwnerEmailConflict(t *testing.T, e env) {
	ctx := context.Background()

	_, err := e.own.Create(ctx, owners.Input{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = e.own.Create(ctx, owners.Input{Name: "Otra Ana", Email: "ANA@example.com"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	luis, err := e.own.Create(ctx, owners.Input{Name: "Luis", Email: "luis@example.com"})
	require.NoError(t, err)

	_, err = e.own.Update(ctx, luis.ID, owners.Input{Name: "Luis", Email: "ana@example.com"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// sin email no hay conflicto
	_, err = e.own.Create(ctx, owners.Input{Name: "Sin mail 1"})
	require.NoError(t, err)
	_, err = e.own.Create(ctx, owners.Input{Name: "Sin mail 2"})
	require.NoError(t, err)

	// su propio email no es conflicto
	_, err = e.own.Update(ctx, luis.ID, owners.Input{Name: "Luis G.", Email: "luis@example.com"})
	require.NoError(t, err)
}

func testOwnerDeleteCascades(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	luis := mustOwner(t, e, "Luis")

	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	mishi := mustPet(t, e, ana.ID, "Mishi", "cat", nil)
	toby := mustPet(t, e, luis.ID, "Toby", "dog", nil)

	a1 := mustAppt(t, e, rex.ID, now, nil)
	a2 := mustAppt(t, e, mishi.ID, now.Add(time.Hour), nil)
	a3 := mustAppt(t, e, toby.ID, now, nil)

	require.NoError(t, e.own.Delete(ctx, ana.ID))

	for _, id := range []string{rex.ID, mishi.ID} {
		_, err := e.pets.GetByID(ctx, id)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	}
	for _, id := range []string{a1.ID, a2.ID} {
		_, err := e.appts.GetByID(ctx, id)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	}

	left, err := e.pets.List(ctx, pets.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{toby.ID}, ids(left, petID))

	leftAppts, err := e.appts.List(ctx, appointments.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{a3.ID}, ids(leftAppts, entryID))

	_, err = e.docs.Get(ctx, document.TablePets, rex.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = e.own.Delete(ctx, ana.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testPetCreateRequiresOwner(t *testing.T, e env) {
	ctx := context.Background()

	_, err := e.pets.Create(ctx, pets.CreateInput{OwnerID: "missing", Name: "Rex", Species: "dog"})
	require.ErrorIs(t, err, apperr.ErrReference)

	_, err = e.pets.Create(ctx, pets.CreateInput{Name: "Rex", Species: "dog"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	ana := mustOwner(t, e, "Ana")
	_, err = e.pets.Create(ctx, pets.CreateInput{OwnerID: ana.ID, Name: "Rex"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	all, err := e.pets.List(ctx, pets.ListInput{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testPetUpdateMergesMedical(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", document.Document{
		"alergias":     []any{"penicilina"},
		"esterilizado": false,
		"vacunas":      map[string]any{"rabia": "2025-01-10"},
	})

	_, err := e.pets.Update(ctx, rex.ID, pets.Patch{
		Medical: document.Document{"microchip": "123", "esterilizado": true},
	})
	require.NoError(t, err)

	got, err := e.pets.Get(ctx, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)
	assert.Equal(t, "123", got.Medical["microchip"])
	assert.Equal(t, true, got.Medical["esterilizado"])
	assert.Equal(t, []any{"penicilina"}, got.Medical["alergias"])
	assert.Equal(t, map[string]any{"rabia": "2025-01-10"}, got.Medical["vacunas"])

	// null es un valor, no un borrado
	_, err = e.pets.Update(ctx, rex.ID, pets.Patch{Medical: document.Document{"microchip": nil}})
	require.NoError(t, err)
	got, err = e.pets.Get(ctx, rex.ID)
	require.NoError(t, err)
	v, ok := got.Medical["microchip"]
	assert.True(t, ok)
	assert.Nil(t, v)

	_, err = e.pets.Update(ctx, "missing", pets.Patch{Medical: document.Document{"a": 1}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testPetUpdateFields(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", document.Document{"microchip": "1"})

	name := "Rex II"
	breed := "labrador"
	weight := 31.5
	birth := time.Date(2020, time.May, 4, 0, 0, 0, 0, time.UTC)

	updated, err := e.pets.Update(ctx, rex.ID, pets.Patch{
		Name:      &name,
		Breed:     &breed,
		WeightKg:  &weight,
		BirthDate: pets.PatchDate{Present: true, Value: &birth},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rex II", updated.Name)
	assert.Equal(t, ana.ID, updated.OwnerID)

	got, err := e.pets.GetByID(ctx, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex II", got.Name)
	assert.Equal(t, pets.SpeciesDog, got.Species)
	assert.Equal(t, "labrador", got.Breed)
	require.NotNil(t, got.WeightKg)
	assert.InDelta(t, 31.5, *got.WeightKg, 0.0001)
	require.NotNil(t, got.BirthDate)
	assert.True(t, birth.Equal(*got.BirthDate), "birth date %v", got.BirthDate)
	assert.Equal(t, "1", got.Medical["microchip"])

	// fecha explícitamente en null la limpia
	_, err = e.pets.Update(ctx, rex.ID, pets.Patch{BirthDate: pets.PatchDate{Present: true}})
	require.NoError(t, err)
	got, err = e.pets.GetByID(ctx, rex.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BirthDate)
	assert.NotNil(t, got.WeightKg)

	empty := " "
	_, err = e.pets.Update(ctx, rex.ID, pets.Patch{Name: &empty})
	require.ErrorIs(t, err, apperr.ErrValidation)

	neg := -1.0
	_, err = e.pets.Update(ctx, rex.ID, pets.Patch{WeightKg: &neg})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func testPetListFilters(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	luis := mustOwner(t, e, "Luis")

	rex := mustPet(t, e, ana.ID, "Rex", "dog", document.Document{"microchip": "A1"})
	mishi := mustPet(t, e, ana.ID, "Mishi", "Cat", document.Document{"esterilizado": true})
	toby := mustPet(t, e, luis.ID, "Toby", "dog", document.Document{"microchip": "B2"})

	byOwner, err := e.pets.List(ctx, pets.ListInput{OwnerID: ana.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{rex.ID, mishi.ID}, ids(byOwner, petID))

	bySpecies, err := e.pets.List(ctx, pets.ListInput{Species: "CA"})
	require.NoError(t, err)
	assert.Equal(t, []string{mishi.ID}, ids(bySpecies, petID))

	withChip, err := e.pets.List(ctx, pets.ListInput{Doc: document.Filter{Key: "microchip"}})
	require.NoError(t, err)
	assert.Equal(t, []string{rex.ID, toby.ID}, ids(withChip, petID))

	chipB2, err := e.pets.List(ctx, pets.ListInput{Doc: document.Filter{Key: "microchip", Value: "B2", MatchValue: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{toby.ID}, ids(chipB2, petID))

	combined, err := e.pets.List(ctx, pets.ListInput{OwnerID: ana.ID, Doc: document.Filter{Key: "microchip"}})
	require.NoError(t, err)
	assert.Equal(t, []string{rex.ID}, ids(combined, petID))

	none, err := e.pets.List(ctx, pets.ListInput{Doc: document.Filter{Key: "nope"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testPetDeleteCascades(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	mishi := mustPet(t, e, ana.ID, "Mishi", "cat", nil)

	a1 := mustAppt(t, e, rex.ID, now, nil)
	a2 := mustAppt(t, e, mishi.ID, now, nil)

	require.NoError(t, e.pets.Delete(ctx, rex.ID))

	_, err := e.appts.GetByID(ctx, a1.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.appts.GetByID(ctx, a2.ID)
	require.NoError(t, err)

	got, err := e.own.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{mishi.ID}, ids(got.Pets, petID))

	err = e.pets.Delete(ctx, rex.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testAppointmentCreateRequiresPet(t *testing.T, e env) {
	ctx := context.Background()

	_, err := e.appts.Create(ctx, appointments.CreateInput{PetID: "missing", ScheduledAt: now})
	require.ErrorIs(t, err, apperr.ErrReference)

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)

	_, err = e.appts.Create(ctx, appointments.CreateInput{PetID: rex.ID})
	require.ErrorIs(t, err, apperr.ErrValidation)

	a := mustAppt(t, e, rex.ID, now, document.Document{"sintomas": []any{"tos"}})
	assert.Equal(t, appointments.StatusScheduled, a.Status)

	got, err := e.appts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, rex.ID, got.PetID)
	assert.Equal(t, appointments.StatusScheduled, got.Status)
	assert.True(t, now.Equal(got.ScheduledAt))
	assert.Equal(t, "control", got.Reason)
	assert.Equal(t, []any{"tos"}, got.Consultation["sintomas"])
}

func testAppointmentStateMachine(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)

	for _, target := range []string{"completed", "cancelled", "no_show"} {
		a := mustAppt(t, e, rex.ID, now, nil)

		_, err := e.appts.SetStatus(ctx, a.ID, "scheduled")
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)

		_, err = e.appts.SetStatus(ctx, a.ID, "bogus")
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)

		got, err := e.appts.SetStatus(ctx, a.ID, target)
		require.NoError(t, err)
		assert.Equal(t, appointments.Status(target), got.Status)

		for _, next := range []string{"scheduled", "completed", "cancelled", "no_show"} {
			_, err := e.appts.SetStatus(ctx, a.ID, next)
			require.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s -> %s", target, next)
		}

		stored, err := e.appts.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, appointments.Status(target), stored.Status)
	}

	_, err := e.appts.SetStatus(ctx, "missing", "completed")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// NotFound gana sobre un destino inválido
	_, err = e.appts.SetStatus(ctx, "missing", "bogus")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testAppointmentConcurrentTransition(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	a := mustAppt(t, e, rex.ID, now, nil)

	targets := []string{"completed", "cancelled", "no_show", "completed", "cancelled", "no_show", "completed", "cancelled"}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losers  int
		others  []error
	)
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			_, err := e.appts.SetStatus(ctx, a.ID, target)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, target)
			case errors.Is(err, apperr.ErrInvalidTransition):
				losers++
			default:
				others = append(others, err)
			}
		}(target)
	}
	wg.Wait()

	require.Empty(t, others)
	require.Len(t, winners, 1)
	assert.Equal(t, len(targets)-1, losers)

	got, err := e.appts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointments.Status(winners[0]), got.Status)
}

func testAppointmentListToday(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)

	dayStart := time.Date(2026, time.March, 10, 0, 0, 0, 0, clinic)

	// creadas fuera de orden a propósito
	late := mustAppt(t, e, rex.ID, dayStart.Add(24*time.Hour-time.Second), nil)
	_ = mustAppt(t, e, rex.ID, dayStart.Add(24*time.Hour), nil) // mañana 00:00
	_ = mustAppt(t, e, rex.ID, dayStart.Add(-time.Second), nil) // ayer 23:59:59
	first := mustAppt(t, e, rex.ID, dayStart, nil)
	noonUTC := mustAppt(t, e, rex.ID, time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC), nil)

	today, err := e.appts.ListToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, noonUTC.ID, late.ID}, ids(today, entryID))
}

func testAppointmentListFilters(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	mishi := mustPet(t, e, ana.ID, "Mishi", "cat", nil)

	a1 := mustAppt(t, e, rex.ID, now.Add(2*time.Hour), document.Document{"pago": "pagado"})
	a2 := mustAppt(t, e, mishi.ID, now.Add(time.Hour), document.Document{"pago": "pendiente"})
	a3 := mustAppt(t, e, rex.ID, now, nil)

	_, err := e.appts.SetStatus(ctx, a3.ID, "cancelled")
	require.NoError(t, err)

	all, err := e.appts.List(ctx, appointments.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{a3.ID, a2.ID, a1.ID}, ids(all, entryID))

	byPet, err := e.appts.List(ctx, appointments.ListInput{PetID: rex.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a3.ID, a1.ID}, ids(byPet, entryID))

	scheduled, err := e.appts.List(ctx, appointments.ListInput{Status: "scheduled"})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, a1.ID}, ids(scheduled, entryID))

	paid, err := e.appts.List(ctx, appointments.ListInput{Doc: document.Filter{Key: "pago", Value: "pagado", MatchValue: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID}, ids(paid, entryID))

	_, err = e.appts.List(ctx, appointments.ListInput{Status: "bogus"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	detail, err := e.pets.Get(ctx, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a3.ID, a1.ID}, ids(detail.Appointments, apptID))
}

func testAppointmentAgendaJoinsPetAndOwner(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	luis, err := e.own.Create(ctx, owners.Input{Name: "Luis", Phone: "555-0199"})
	require.NoError(t, err)
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	mishi := mustPet(t, e, luis.ID, "Mishi", "cat", nil)

	a1 := mustAppt(t, e, rex.ID, now, nil)
	a2 := mustAppt(t, e, mishi.ID, now.Add(time.Hour), nil)

	check := func(t *testing.T, got []appointments.AgendaEntry) {
		t.Helper()
		require.Equal(t, []string{a1.ID, a2.ID}, ids(got, entryID))

		assert.Equal(t, rex.ID, got[0].PetID)
		assert.Equal(t, "Rex", got[0].PetName)
		assert.Equal(t, "dog", got[0].PetSpecies)
		assert.Equal(t, ana.ID, got[0].OwnerID)
		assert.Equal(t, "Ana", got[0].OwnerName)
		assert.Equal(t, "555-0100", got[0].OwnerPhone)

		assert.Equal(t, "Mishi", got[1].PetName)
		assert.Equal(t, "cat", got[1].PetSpecies)
		assert.Equal(t, luis.ID, got[1].OwnerID)
		assert.Equal(t, "Luis", got[1].OwnerName)
		assert.Equal(t, "555-0199", got[1].OwnerPhone)
	}

	today, err := e.appts.ListToday(ctx)
	require.NoError(t, err)
	check(t, today)

	all, err := e.appts.List(ctx, appointments.ListInput{})
	require.NoError(t, err)
	check(t, all)

	// el dueño se lee al listar, no se copia al crear la cita
	_, err = e.own.Update(ctx, ana.ID, owners.Input{Name: "Ana María", Phone: "555-0111"})
	require.NoError(t, err)

	byPet, err := e.appts.List(ctx, appointments.ListInput{PetID: rex.ID})
	require.NoError(t, err)
	require.Len(t, byPet, 1)
	assert.Equal(t, "Ana María", byPet[0].OwnerName)
	assert.Equal(t, "555-0111", byPet[0].OwnerPhone)
}

func testAppointmentDelete(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	a := mustAppt(t, e, rex.ID, now, nil)

	require.NoError(t, e.appts.Delete(ctx, a.ID))

	_, err := e.appts.GetByID(ctx, a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// sin cascada hacia arriba
	_, err = e.pets.GetByID(ctx, rex.ID)
	require.NoError(t, err)

	err = e.appts.Delete(ctx, a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func testDocuments(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)

	got, err := e.docs.Get(ctx, document.TablePets, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, document.New(), got)

	doc := document.Document{
		"alergias":  []any{"penicilina", "polen"},
		"peso_hist": []any{10.5, 11.0},
		"chip":      nil,
		"extra":     map[string]any{"nested": map[string]any{"deep": true}},
	}
	require.NoError(t, e.docs.Set(ctx, document.TablePets, rex.ID, doc))

	got, err = e.docs.Get(ctx, document.TablePets, rex.ID)
	require.NoError(t, err)
	assert.True(t, document.Equal(doc, got), "got %v", got)
	assert.True(t, got.Has("chip"))

	merged, err := e.docs.Merge(ctx, document.TablePets, rex.ID, document.Document{"chip": "X9", "nuevo": 1})
	require.NoError(t, err)
	assert.Equal(t, "X9", merged["chip"])
	assert.True(t, document.Equal(1, merged["nuevo"]), "got %v", merged["nuevo"])
	assert.Equal(t, []any{"penicilina", "polen"}, merged["alergias"])

	got, err = e.docs.Get(ctx, document.TablePets, rex.ID)
	require.NoError(t, err)
	assert.True(t, document.Equal(merged, got))

	// el documento también es visible por el repositorio de la entidad
	p, err := e.pets.GetByID(ctx, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, "X9", p.Medical["chip"])

	// Set reemplaza todo
	require.NoError(t, e.docs.Set(ctx, document.TablePets, rex.ID, document.Document{"solo": "esto"}))
	got, err = e.docs.Get(ctx, document.TablePets, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, document.Document{"solo": "esto"}, got)

	_, err = e.docs.Get(ctx, document.TablePets, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	err = e.docs.Set(ctx, document.TableOwners, "missing", document.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.docs.Merge(ctx, document.TableAppointments, "missing", document.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.docs.Get(ctx, document.Table("vets"), rex.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)

	err = e.docs.Set(ctx, document.TablePets, rex.ID, document.Document{"bad": func() {}})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

// Un id repetido es Conflict con su propio mensaje, no una referencia rota.
func testDuplicateIDIsConflict(t *testing.T, e env) {
	ctx := context.Background()

	ana := mustOwner(t, e, "Ana")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	a := mustAppt(t, e, rex.ID, now, nil)

	err := e.b.Owners().Create(ctx, owners.Owner{ID: ana.ID, Name: "Otra", CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "owner "+ana.ID+" already exists")

	err = e.b.Pets().Create(ctx, pets.Pet{ID: rex.ID, OwnerID: ana.ID, Name: "Otro", Species: pets.Species("dog"), CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "pet "+rex.ID+" already exists")
	assert.NotContains(t, err.Error(), "does not exist")

	err = e.b.Appointments().Create(ctx, appointments.Appointment{
		ID: a.ID, PetID: rex.ID, ScheduledAt: now, Status: appointments.StatusScheduled, CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "appointment "+a.ID+" already exists")
	assert.NotContains(t, err.Error(), "does not exist")

	// la FK rota sigue nombrando al padre
	err = e.b.Pets().Create(ctx, pets.Pet{ID: "p-nuevo", OwnerID: "missing", Name: "Toby", Species: pets.Species("dog"), CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, apperr.ErrReference)
	assert.Contains(t, err.Error(), "owner missing does not exist")
}

func testDocumentLargeIntegers(t *testing.T, e env) {
	ctx := context.Background()

	doc, err := document.Parse([]byte(`{"ref": 12345678901234567, "monto": 0.1}`))
	require.NoError(t, err)

	o, err := e.own.Create(ctx, owners.Input{Name: "Ana", Contact: doc})
	require.NoError(t, err)

	got, err := e.docs.Get(ctx, document.TableOwners, o.ID)
	require.NoError(t, err)
	raw, err := got.Value()
	require.NoError(t, err)
	assert.Contains(t, raw.(string), `"ref":12345678901234567`)
	assert.True(t, document.Equal(doc, got), "got %v", got)

	found, err := e.docs.QueryByKeyEquals(ctx, document.TableOwners, "ref", doc["ref"])
	require.NoError(t, err)
	assert.Equal(t, []string{o.ID}, found)

	// difiere solo en el último dígito
	found, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "ref", document.ParseValue("12345678901234568"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func testDocumentQueries(t *testing.T, e env) {
	ctx := context.Background()

	o1, err := e.own.Create(ctx, owners.Input{Name: "Ana", Contact: document.Document{"contacto_preferido": "whatsapp"}})
	require.NoError(t, err)
	o2, err := e.own.Create(ctx, owners.Input{Name: "Luis", Contact: document.Document{"contacto_preferido": "email", "notas": nil}})
	require.NoError(t, err)
	o3, err := e.own.Create(ctx, owners.Input{Name: "Eva", Contact: document.Document{"contacto_preferido": "whatsapp", "vip": true, "visitas": 3}})
	require.NoError(t, err)

	got, err := e.docs.QueryByKeyExists(ctx, document.TableOwners, "contacto_preferido")
	require.NoError(t, err)
	assert.Equal(t, []string{o1.ID, o2.ID, o3.ID}, got)

	got, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "contacto_preferido", "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, []string{o1.ID, o3.ID}, got)

	// key presente con null cuenta como existente
	got, err = e.docs.QueryByKeyExists(ctx, document.TableOwners, "notas")
	require.NoError(t, err)
	assert.Equal(t, []string{o2.ID}, got)

	got, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "notas", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{o2.ID}, got)

	got, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "vip", true)
	require.NoError(t, err)
	assert.Equal(t, []string{o3.ID}, got)

	got, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "visitas", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{o3.ID}, got)

	// "3" (string) no es 3 (número)
	got, err = e.docs.QueryByKeyEquals(ctx, document.TableOwners, "visitas", "3")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.docs.QueryByKeyExists(ctx, document.TableOwners, "nope")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.docs.QueryByKeyExists(ctx, document.TableOwners, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.docs.QueryByKeyEquals(ctx, document.Table("vets"), "x", 1)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func testStats(t *testing.T, e env) {
	ctx := context.Background()

	empty, err := e.stats.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalOwners)
	assert.Len(t, empty.ByStatus, 4)
	assert.NotNil(t, empty.PetsBySpecies)

	ana := mustOwner(t, e, "Ana")
	luis := mustOwner(t, e, "Luis")
	rex := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	_ = mustPet(t, e, ana.ID, "Mishi", "cat", nil)
	_ = mustPet(t, e, luis.ID, "Toby", "dog", nil)
	_ = mustPet(t, e, luis.ID, "Coco", "bird", nil)

	a1 := mustAppt(t, e, rex.ID, now.Add(time.Hour), nil)     // hoy, futura
	_ = mustAppt(t, e, rex.ID, now.Add(-time.Hour), nil)      // hoy, pasada
	_ = mustAppt(t, e, rex.ID, now.Add(48*time.Hour), nil)    // futura
	a4 := mustAppt(t, e, rex.ID, now.Add(-48*time.Hour), nil) // pasada

	_, err = e.appts.SetStatus(ctx, a1.ID, "completed")
	require.NoError(t, err)
	_, err = e.appts.SetStatus(ctx, a4.ID, "no_show")
	require.NoError(t, err)

	snap, err := e.stats.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalOwners)
	assert.Equal(t, 4, snap.TotalPets)
	assert.Equal(t, 4, snap.TotalAppointments)
	assert.Equal(t, map[appointments.Status]int{
		appointments.StatusScheduled: 2,
		appointments.StatusCompleted: 1,
		appointments.StatusCancelled: 0,
		appointments.StatusNoShow:    1,
	}, snap.ByStatus)
	assert.Equal(t, 2, snap.Today)
	assert.Equal(t, 1, snap.Upcoming)
	assert.Equal(t, []stats.SpeciesCount{
		{Species: "dog", Total: 2},
		{Species: "bird", Total: 1},
		{Species: "cat", Total: 1},
	}, snap.PetsBySpecies)
}

func testStatsPetCountMatchesList(t *testing.T, e env) {
	ctx := context.Background()

	check := func() {
		t.Helper()
		snap, err := e.stats.Compute(ctx)
		require.NoError(t, err)
		all, err := e.pets.List(ctx, pets.ListInput{})
		require.NoError(t, err)
		assert.Equal(t, len(all), snap.TotalPets)
	}

	ana := mustOwner(t, e, "Ana")
	luis := mustOwner(t, e, "Luis")
	check()

	p1 := mustPet(t, e, ana.ID, "Rex", "dog", nil)
	_ = mustPet(t, e, ana.ID, "Mishi", "cat", nil)
	p3 := mustPet(t, e, luis.ID, "Toby", "dog", nil)
	check()

	require.NoError(t, e.pets.Delete(ctx, p1.ID))
	check()

	_ = mustPet(t, e, luis.ID, "Coco", "bird", nil)
	require.NoError(t, e.own.Delete(ctx, ana.ID))
	check()

	require.NoError(t, e.pets.Delete(ctx, p3.ID))
	check()
}
