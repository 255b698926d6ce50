package memory

import (
	"context"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

type apptRepo struct {
	s *Store
}

func (r *apptRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return apperr.Validation("appointment id required")
	}
	if _, exists := r.s.appts[a.ID]; exists {
		return apperr.Conflict("appointment %s already exists", a.ID)
	}
	if _, ok := r.s.pets[a.PetID]; !ok {
		return apperr.Reference("pet", a.PetID)
	}

	r.s.docSet(document.TableAppointments, a.ID, a.Consultation)
	a.Consultation = nil
	r.s.appts[a.ID] = apptRow{seq: r.s.nextSeq(), a: a}
	return nil
}

func (r *apptRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.appts[id]
	if !ok {
		return appointments.Appointment{}, apperr.NotFound("appointment", id)
	}
	return r.hydrate(row.a), nil
}

func (r *apptRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.AgendaEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	only := idSet(filter.IDs)
	return r.agenda(func(a appointments.Appointment) bool {
		if filter.PetID != "" && a.PetID != filter.PetID {
			return false
		}
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		if only != nil {
			if _, ok := only[a.ID]; !ok {
				return false
			}
		}
		return true
	}), nil
}

func (r *apptRepo) ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(a appointments.Appointment) bool { return a.PetID == petID }), nil
}

func (r *apptRepo) ListBetween(ctx context.Context, from, to time.Time) ([]appointments.AgendaEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.agenda(func(a appointments.Appointment) bool {
		return !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to)
	}), nil
}

func (r *apptRepo) TransitionStatus(ctx context.Context, id string, to appointments.Status, at time.Time) (appointments.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.appts[id]
	if !ok {
		return appointments.Appointment{}, apperr.NotFound("appointment", id)
	}
	if err := appointments.CheckTransition(row.a.Status, to); err != nil {
		return appointments.Appointment{}, err
	}

	row.a.Status = to
	row.a.UpdatedAt = at
	r.s.appts[id] = row
	return r.hydrate(row.a), nil
}

func (r *apptRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appts[id]; !ok {
		return apperr.NotFound("appointment", id)
	}
	r.s.deleteAppointment(id)
	return nil
}

// collect asume el lock tomado. Orden por scheduled_at asc.
func (r *apptRepo) collect(keep func(appointments.Appointment) bool) []appointments.Appointment {
	rows := make([]apptRow, 0)
	for _, row := range r.s.appts {
		if keep(row.a) {
			rows = append(rows, row)
		}
	}
	out := sortAppointments(rows)
	for i := range out {
		out[i] = r.hydrate(out[i])
	}
	return out
}

// agenda asume el lock tomado: mascota y dueño se leen en el mismo snapshot que la cita.
func (r *apptRepo) agenda(keep func(appointments.Appointment) bool) []appointments.AgendaEntry {
	items := r.collect(keep)
	out := make([]appointments.AgendaEntry, 0, len(items))
	for _, a := range items {
		pet := r.s.pets[a.PetID].p
		owner := r.s.owners[pet.OwnerID].o
		out = append(out, appointments.AgendaEntry{
			Appointment: a,
			PetName:     pet.Name,
			PetSpecies:  string(pet.Species),
			OwnerID:     owner.ID,
			OwnerName:   owner.Name,
			OwnerPhone:  owner.Phone,
		})
	}
	return out
}

func (r *apptRepo) hydrate(a appointments.Appointment) appointments.Appointment {
	a.Consultation = r.s.docGet(document.TableAppointments, a.ID)
	return a
}
