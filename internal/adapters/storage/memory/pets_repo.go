package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return apperr.Validation("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return apperr.Conflict("pet %s already exists", p.ID)
	}
	if _, ok := r.s.owners[p.OwnerID]; !ok {
		return apperr.Reference("owner", p.OwnerID)
	}

	r.s.docSet(document.TablePets, p.ID, p.Medical)
	r.s.pets[p.ID] = petRow{seq: r.s.nextSeq(), p: detach(p)}
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, apperr.NotFound("pet", id)
	}
	return r.hydrate(row.p), nil
}

func (r *petRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	species := strings.ToLower(filter.Species)
	only := idSet(filter.IDs)

	return r.collect(func(p pets.Pet) bool {
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			return false
		}
		if species != "" && !strings.Contains(strings.ToLower(string(p.Species)), species) {
			return false
		}
		if only != nil {
			if _, ok := only[p.ID]; !ok {
				return false
			}
		}
		return true
	}), nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(p pets.Pet) bool { return p.OwnerID == ownerID }), nil
}

func (r *petRepo) Update(ctx context.Context, id string, patch pets.Patch, at time.Time) (pets.Pet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, apperr.NotFound("pet", id)
	}

	updated := r.hydrate(row.p).Apply(patch, at)
	r.s.docSet(document.TablePets, id, updated.Medical)
	row.p = detach(updated)
	r.s.pets[id] = row

	return r.hydrate(row.p), nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pets[id]; !ok {
		return apperr.NotFound("pet", id)
	}
	r.s.deletePet(id)
	return nil
}

// collect asume el lock tomado. Orden de creación.
func (r *petRepo) collect(keep func(pets.Pet) bool) []pets.Pet {
	rows := make([]petRow, 0)
	for _, row := range r.s.pets {
		if keep(row.p) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]pets.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.hydrate(row.p))
	}
	return out
}

func (r *petRepo) hydrate(p pets.Pet) pets.Pet {
	p = detach(p)
	p.Medical = r.s.docGet(document.TablePets, p.ID)
	return p
}

// detach copia los punteros para que nadie fuera del store comparta memoria con él.
func detach(p pets.Pet) pets.Pet {
	if p.BirthDate != nil {
		d := *p.BirthDate
		p.BirthDate = &d
	}
	if p.WeightKg != nil {
		w := *p.WeightKg
		p.WeightKg = &w
	}
	p.Medical = nil
	return p
}
