package memory

import (
	"context"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/stats"
)

type statsReader struct {
	s *Store
}

// Compute lee todo bajo un único lock de lectura: los contadores son coherentes entre sí.
func (r *statsReader) Compute(ctx context.Context, w stats.Window) (stats.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	snap := stats.Snapshot{
		TotalOwners:       len(r.s.owners),
		TotalPets:         len(r.s.pets),
		TotalAppointments: len(r.s.appts),
		ByStatus:          make(map[appointments.Status]int, len(appointments.AllStatuses)),
	}

	for _, row := range r.s.appts {
		a := row.a
		snap.ByStatus[a.Status]++
		if !a.ScheduledAt.Before(w.DayStart) && a.ScheduledAt.Before(w.DayEnd) {
			snap.Today++
		}
		if a.Status == appointments.StatusScheduled && !a.ScheduledAt.Before(w.Now) {
			snap.Upcoming++
		}
	}

	bySpecies := make(map[string]int)
	for _, row := range r.s.pets {
		bySpecies[string(row.p.Species)]++
	}
	for sp, n := range bySpecies {
		snap.PetsBySpecies = append(snap.PetsBySpecies, stats.SpeciesCount{Species: sp, Total: n})
	}
	return snap, nil
}
