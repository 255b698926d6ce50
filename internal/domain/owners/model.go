package owners

import (
	"time"

	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/pets"
)

// Owner es la persona responsable de una o más mascotas.
type Owner struct {
	ID string

	Name    string
	Phone   string
	Email   string // opcional; único cuando viene
	Address string

	// Contact: contacto_preferido, telefono_emergencia, notas... sin schema.
	Contact document.Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Detail es el dueño con sus mascotas (orden de creación).
type Detail struct {
	Owner
	Pets []pets.Pet
}

type ListFilter struct {
	// Search: substring sin distinguir mayúsculas sobre nombre o email.
	Search string
}
