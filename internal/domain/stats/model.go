package stats

import (
	"time"

	"vet-clinic/internal/domain/appointments"
)

// Window son los límites temporales con los que se calculan los contadores.
type Window struct {
	DayStart time.Time // inclusive
	DayEnd   time.Time // exclusive
	Now      time.Time
}

type SpeciesCount struct {
	Species string
	Total   int
}

// Snapshot es el resumen del dashboard.
type Snapshot struct {
	TotalOwners       int
	TotalPets         int
	TotalAppointments int

	ByStatus map[appointments.Status]int

	// Today: citas cuyo scheduled_at cae en el día actual de la clínica.
	Today int
	// Upcoming: citas scheduled con scheduled_at >= ahora.
	Upcoming int

	PetsBySpecies []SpeciesCount
}
