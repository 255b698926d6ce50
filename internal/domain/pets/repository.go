package pets

import (
	"context"
	"time"
)

type Repository interface {
	// Create falla con apperr.ErrReference si el dueño no existe.
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	// Update aplica campos + merge del documento médico en una sola unidad atómica.
	Update(ctx context.Context, id string, patch Patch, at time.Time) (Pet, error)
	// Delete borra la mascota y sus citas en una sola unidad atómica.
	Delete(ctx context.Context, id string) error
}
