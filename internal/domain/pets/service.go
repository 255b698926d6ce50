package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

// AppointmentLister evita acoplar el servicio al repositorio completo de citas.
type AppointmentLister interface {
	ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error)
}

type Service struct {
	repo  Repository
	appts AppointmentLister
	docs  document.Store
	now   func() time.Time
}

func NewService(repo Repository, appts AppointmentLister, docs document.Store) *Service {
	return &Service{
		repo:  repo,
		appts: appts,
		docs:  docs,
		now:   time.Now,
	}
}

type CreateInput struct {
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	WeightKg  *float64
	Medical   document.Document
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return Pet{}, apperr.Validation("owner_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Species) == "" {
		return Pet{}, apperr.Validation("species is required")
	}
	if in.WeightKg != nil && *in.WeightKg < 0 {
		return Pet{}, apperr.Validation("weight_kg must be >= 0")
	}

	medical, err := document.Normalize(in.Medical)
	if err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Species:   Species(strings.TrimSpace(in.Species)),
		Breed:     strings.TrimSpace(in.Breed),
		BirthDate: in.BirthDate,
		WeightKg:  in.WeightKg,
		Medical:   medical,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, apperr.NotFound("pet", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Get devuelve la mascota con sus citas ordenadas por fecha ascendente.
// Mascota y citas se leen por separado, no son un snapshot único.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	appts, err := s.appts.ListByPet(ctx, p.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Pet: p, Appointments: appts}, nil
}

type ListInput struct {
	OwnerID string
	Species string
	Doc     document.Filter
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Pet, error) {
	filter := ListFilter{
		OwnerID: strings.TrimSpace(in.OwnerID),
		Species: strings.TrimSpace(in.Species),
	}

	if !in.Doc.IsZero() {
		ids, err := document.Query(ctx, s.docs, document.TablePets, in.Doc)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []Pet{}, nil
		}
		filter.IDs = ids
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update aplica un update parcial. El documento médico se mergea, no se reemplaza.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, apperr.NotFound("pet", id)
	}

	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return Pet{}, apperr.Validation("name cannot be empty")
		}
		patch.Name = &v
	}
	if patch.Species != nil {
		v := strings.TrimSpace(*patch.Species)
		if v == "" {
			return Pet{}, apperr.Validation("species cannot be empty")
		}
		patch.Species = &v
	}
	if patch.Breed != nil {
		v := strings.TrimSpace(*patch.Breed)
		patch.Breed = &v
	}
	if patch.WeightKg != nil && *patch.WeightKg < 0 {
		return Pet{}, apperr.Validation("weight_kg must be >= 0")
	}
	if patch.Medical != nil {
		m, err := document.Normalize(patch.Medical)
		if err != nil {
			return Pet{}, err
		}
		patch.Medical = m
	}

	return s.repo.Update(ctx, id, patch, s.now())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.NotFound("pet", id)
	}
	return s.repo.Delete(ctx, id)
}
