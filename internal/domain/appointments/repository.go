package appointments

import (
	"context"
	"time"
)

type Repository interface {
	// Create falla con apperr.ErrReference si la mascota no existe.
	Create(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	// List y ListBetween devuelven la agenda: cada cita con su mascota y dueño,
	// leídos en la misma consulta.
	List(ctx context.Context, filter ListFilter) ([]AgendaEntry, error)
	ListByPet(ctx context.Context, petID string) ([]Appointment, error)
	// ListBetween devuelve las citas con from <= scheduled_at < to, orden ascendente.
	ListBetween(ctx context.Context, from, to time.Time) ([]AgendaEntry, error)
	// TransitionStatus lee el estado actual, valida con CheckTransition y lo
	// actualiza en una sola unidad atómica.
	TransitionStatus(ctx context.Context, id string, to Status, at time.Time) (Appointment, error)
	Delete(ctx context.Context, id string) error
}
