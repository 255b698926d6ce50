package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

type Service struct {
	repo Repository
	docs document.Store
	now  func() time.Time
	loc  *time.Location
}

type Option func(*Service)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation fija la zona horaria de la clínica para "hoy".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(repo Repository, docs document.Store, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		docs: docs,
		now:  time.Now,
		loc:  time.Local,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateInput struct {
	PetID        string
	ScheduledAt  time.Time
	Reason       string
	Notes        string
	Consultation document.Document
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	petID := strings.TrimSpace(in.PetID)
	if petID == "" {
		return Appointment{}, apperr.Validation("pet_id is required")
	}
	if in.ScheduledAt.IsZero() {
		return Appointment{}, apperr.Validation("scheduled_at is required")
	}

	doc, err := document.Normalize(in.Consultation)
	if err != nil {
		return Appointment{}, err
	}

	now := s.now()
	a := Appointment{
		ID:           uuid.NewString(),
		PetID:        petID,
		ScheduledAt:  in.ScheduledAt,
		Status:       StatusScheduled,
		Reason:       strings.TrimSpace(in.Reason),
		Notes:        strings.TrimSpace(in.Notes),
		Consultation: doc,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, apperr.NotFound("appointment", id)
	}
	return s.repo.GetByID(ctx, id)
}

type ListInput struct {
	PetID  string
	Status string
	Doc    document.Filter
}

func (s *Service) List(ctx context.Context, in ListInput) ([]AgendaEntry, error) {
	filter := ListFilter{PetID: strings.TrimSpace(in.PetID)}

	if strings.TrimSpace(in.Status) != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	if !in.Doc.IsZero() {
		ids, err := document.Query(ctx, s.docs, document.TableAppointments, in.Doc)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []AgendaEntry{}, nil
		}
		filter.IDs = ids
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Appointment, error) {
	return s.repo.ListByPet(ctx, petID)
}

// ListToday devuelve las citas del día calendario actual en la zona de la clínica.
func (s *Service) ListToday(ctx context.Context) ([]AgendaEntry, error) {
	from, to := DayBounds(s.now(), s.loc)
	return s.repo.ListBetween(ctx, from, to)
}

// SetStatus aplica la máquina de estados. Solo completed/cancelled/no_show son destinos válidos.
func (s *Service) SetStatus(ctx context.Context, id, status string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, apperr.NotFound("appointment", id)
	}

	to := Status(strings.ToLower(strings.TrimSpace(status)))
	if !to.Valid() || to == StatusScheduled {
		// NotFound tiene prioridad sobre un destino inválido.
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return Appointment{}, err
		}
		return Appointment{}, CheckTransition(current.Status, to)
	}

	return s.repo.TransitionStatus(ctx, id, to, s.now())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.NotFound("appointment", id)
	}
	return s.repo.Delete(ctx, id)
}

// Location es la zona horaria con la que se calcula "hoy".
func (s *Service) Location() *time.Location {
	return s.loc
}

// DayBounds devuelve [inicio del día, inicio del día siguiente) de now en loc.
// Se usa time.Date con day+1 para respetar días de 23/25 horas (DST).
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}
