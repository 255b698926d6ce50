package owners

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/pets"
)

// PetLister evita depender del repositorio completo de mascotas.
type PetLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetLister
	now  func() time.Time
}

func NewService(repo Repository, pets PetLister) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		now:  time.Now,
	}
}

// Input sirve para create y para update (update es de registro completo).
type Input struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Contact document.Document
}

func (in Input) normalize() (Input, error) {
	out := Input{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Address: strings.TrimSpace(in.Address),
	}
	if out.Name == "" {
		return Input{}, apperr.Validation("name is required")
	}
	if out.Email != "" && !strings.Contains(out.Email, "@") {
		return Input{}, apperr.Validation("email is not valid")
	}

	contact, err := document.Normalize(in.Contact)
	if err != nil {
		return Input{}, err
	}
	out.Contact = contact
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Owner, error) {
	in, err := in.normalize()
	if err != nil {
		return Owner{}, err
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		Contact:   in.Contact,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, apperr.NotFound("owner", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Get devuelve el dueño con sus mascotas. Son dos lecturas sin transacción:
// un borrado concurrente puede dejar un dueño con la lista de mascotas ya vacía.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	items, err := s.pets.ListByOwner(ctx, o.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Owner: o, Pets: items}, nil
}

func (s *Service) List(ctx context.Context, search string) ([]Owner, error) {
	return s.repo.List(ctx, ListFilter{Search: strings.TrimSpace(search)})
}

// Update reemplaza todos los campos editables; lo omitido queda vacío.
func (s *Service) Update(ctx context.Context, id string, in Input) (Owner, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	in, err = in.normalize()
	if err != nil {
		return Owner{}, err
	}

	current.Name = in.Name
	current.Phone = in.Phone
	current.Email = in.Email
	current.Address = in.Address
	current.Contact = in.Contact
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Owner{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.NotFound("owner", id)
	}
	return s.repo.Delete(ctx, id)
}
