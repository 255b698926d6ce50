package appointments

import (
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

// Status es el estado de la cita.
// @Enum scheduled, completed, cancelled, no_show
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// AllStatuses en orden estable (útil para estadísticas y validación).
var AllStatuses = []Status{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}

// transitions: desde scheduled se puede ir a cualquier terminal; los terminales no salen.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: nil,
	StatusCancelled: nil,
	StatusNoShow:    nil,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", apperr.Validation("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CheckTransition valida from -> to contra la tabla de transiciones.
func CheckTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	if from.Terminal() {
		return fmt.Errorf("%w: appointment is %s (terminal)", apperr.ErrInvalidTransition, from)
	}
	return fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, from, to)
}

// Appointment es una visita a la clínica, ligada a una mascota.
type Appointment struct {
	ID    string
	PetID string

	ScheduledAt time.Time
	Status      Status

	Reason string
	Notes  string

	// Consultation: síntomas, veterinario, coste, pago, seguimiento... sin schema.
	Consultation document.Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgendaEntry es la cita como la ve recepción: con la mascota y su dueño.
type AgendaEntry struct {
	Appointment

	PetName    string
	PetSpecies string

	OwnerID    string
	OwnerName  string
	OwnerPhone string
}

// ListFilter: todos los campos son opcionales.
type ListFilter struct {
	PetID  string
	Status Status
	// IDs restringe el resultado a ese conjunto (lo usa el filtro por documento).
	IDs []string
}
