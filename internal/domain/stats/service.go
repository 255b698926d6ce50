package stats

import (
	"context"
	"sort"
	"time"

	"vet-clinic/internal/domain/appointments"
)

// Service es de solo lectura: no cachea, cada llamada refleja el estado actual.
type Service struct {
	reader Reader
	now    func() time.Time
	loc    *time.Location
}

func NewService(reader Reader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		reader: reader,
		now:    time.Now,
		loc:    loc,
	}
}

// WithClock reemplaza time.Now (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) Compute(ctx context.Context) (Snapshot, error) {
	now := s.now()
	start, end := appointments.DayBounds(now, s.loc)

	snap, err := s.reader.Compute(ctx, Window{DayStart: start, DayEnd: end, Now: now})
	if err != nil {
		return Snapshot{}, err
	}
	return normalize(snap), nil
}

// normalize garantiza los cuatro estados en ByStatus y un orden estable por especie.
func normalize(s Snapshot) Snapshot {
	by := make(map[appointments.Status]int, len(appointments.AllStatuses))
	for _, st := range appointments.AllStatuses {
		by[st] = s.ByStatus[st]
	}
	s.ByStatus = by

	if s.PetsBySpecies == nil {
		s.PetsBySpecies = []SpeciesCount{}
	}
	sort.SliceStable(s.PetsBySpecies, func(i, j int) bool {
		a, b := s.PetsBySpecies[i], s.PetsBySpecies[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Species < b.Species
	})
	return s
}
