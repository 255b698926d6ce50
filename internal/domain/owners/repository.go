package owners

import "context"

type Repository interface {
	// Create/Update fallan con apperr.ErrConflict si el email ya está en uso.
	Create(ctx context.Context, o Owner) error
	// Update reemplaza el registro completo, incluido el documento de contacto.
	Update(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, id string) (Owner, error)
	List(ctx context.Context, filter ListFilter) ([]Owner, error)
	// Delete borra el dueño, sus mascotas y las citas de esas mascotas en una sola unidad atómica.
	Delete(ctx context.Context, id string) error
}
