package pets

import (
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/document"
)

// Species es texto libre; estas constantes son las que usa el front por defecto.
// @Enum dog, cat, bird, rabbit, reptile, other
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRabbit  Species = "rabbit"
	SpeciesReptile Species = "reptile"
	SpeciesOther   Species = "other"
)

// Pet representa un paciente de la clínica. OwnerID no cambia después de crearla.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string

	BirthDate *time.Time
	WeightKg  *float64

	// Medical: alergias, condiciones, vacunas, microchip, esterilizado... sin schema.
	Medical document.Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Detail es la mascota con su historial de citas (scheduled_at ascendente).
type Detail struct {
	Pet
	Appointments []appointments.Appointment
}

// PatchDate distingue "no enviado" de "enviado como null" (para limpiar la fecha).
type PatchDate struct {
	Present bool
	Value   *time.Time
}

// Patch es un update parcial: nil = no tocar.
type Patch struct {
	Name      *string
	Species   *string
	Breed     *string
	BirthDate PatchDate
	WeightKg  *float64

	// Medical se mergea (superficial) sobre el documento actual.
	Medical document.Document
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Species == nil && p.Breed == nil &&
		!p.BirthDate.Present && p.WeightKg == nil && p.Medical == nil
}

// Apply devuelve la mascota con el patch aplicado. Los adapters lo llaman
// dentro de su unidad de trabajo, con la fila ya bloqueada.
func (p Pet) Apply(patch Patch, at time.Time) Pet {
	out := p
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Species != nil {
		out.Species = Species(*patch.Species)
	}
	if patch.Breed != nil {
		out.Breed = *patch.Breed
	}
	if patch.BirthDate.Present {
		out.BirthDate = patch.BirthDate.Value
	}
	if patch.WeightKg != nil {
		w := *patch.WeightKg
		out.WeightKg = &w
	}
	if patch.Medical != nil {
		base := p.Medical
		if base == nil {
			base = document.New()
		}
		out.Medical = base.Merge(patch.Medical)
	}
	if !patch.IsEmpty() {
		out.UpdatedAt = at
	}
	return out
}

type ListFilter struct {
	OwnerID string
	// Species: substring sin distinguir mayúsculas.
	Species string
	IDs     []string
}
