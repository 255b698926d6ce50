package owners_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
)

func newServices() (*owners.Service, *pets.Service) {
	st := memory.New()
	apptsSvc := appointments.NewService(st.Appointments(), st.Documents())
	petsSvc := pets.NewService(st.Pets(), apptsSvc, st.Documents())
	return owners.NewService(st.Owners(), petsSvc), petsSvc
}

func TestCreateNormalizes(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()

	o, err := svc.Create(ctx, owners.Input{
		Name:    "  Ana Pérez ",
		Email:   " Ana@Example.COM ",
		Contact: document.Document{"preferred": "sms"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", o.Name)
	assert.Equal(t, "ana@example.com", o.Email)
	assert.Equal(t, "sms", o.Contact["preferred"])

	_, err = svc.Create(ctx, owners.Input{Name: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, owners.Input{Name: "X", Email: "not-an-email"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestEmailIsUniqueIgnoringCase(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()

	a, err := svc.Create(ctx, owners.Input{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, owners.Input{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owners.Input{Name: "C", Email: "A@X.com"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Update(ctx, b.ID, owners.Input{Name: "B", Email: "a@x.com"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// sin email no hay conflicto
	_, err = svc.Create(ctx, owners.Input{Name: "D"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owners.Input{Name: "E"})
	require.NoError(t, err)

	// el propio dueño puede conservar su email
	_, err = svc.Update(ctx, a.ID, owners.Input{Name: "A2", Email: "a@x.com"})
	require.NoError(t, err)
}

func TestUpdateReplacesRecord(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()

	o, err := svc.Create(ctx, owners.Input{
		Name:    "Ana",
		Phone:   "1",
		Address: "Calle 1",
		Contact: document.Document{"preferred": "sms"},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, o.ID, owners.Input{Name: "Ana B"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.Name)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Address)
	assert.Empty(t, got.Contact)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	_, err = svc.Update(ctx, "missing", owners.Input{Name: "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetIncludesPetsAndDeleteCascades(t *testing.T) {
	svc, petsSvc := newServices()
	ctx := context.Background()

	o, err := svc.Create(ctx, owners.Input{Name: "Ana"})
	require.NoError(t, err)
	p, err := petsSvc.Create(ctx, pets.CreateInput{OwnerID: o.ID, Name: "Milo", Species: "dog"})
	require.NoError(t, err)

	d, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, d.Pets, 1)
	assert.Equal(t, p.ID, d.Pets[0].ID)

	require.NoError(t, svc.Delete(ctx, o.ID))

	_, err = petsSvc.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = svc.Delete(ctx, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListSearch(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()

	for _, in := range []owners.Input{
		{Name: "Ana Pérez", Email: "ana@x.com"},
		{Name: "Bruno", Email: "bruno@ana.org"},
		{Name: "Carla"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Ana Pérez", items[0].Name)
	assert.Equal(t, "Bruno", items[1].Name)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
