package memory

import (
	"context"
	"sort"
	"strings"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
)

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return apperr.Validation("owner id required")
	}
	if _, exists := r.s.owners[o.ID]; exists {
		return apperr.Conflict("owner %s already exists", o.ID)
	}
	if err := r.checkEmail(o); err != nil {
		return err
	}

	r.s.docSet(document.TableOwners, o.ID, o.Contact)
	o.Contact = nil
	r.s.owners[o.ID] = ownerRow{seq: r.s.nextSeq(), o: o}
	return nil
}

func (r *ownerRepo) Update(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.owners[o.ID]
	if !ok {
		return apperr.NotFound("owner", o.ID)
	}
	if err := r.checkEmail(o); err != nil {
		return err
	}

	r.s.docSet(document.TableOwners, o.ID, o.Contact)
	o.Contact = nil
	row.o = o
	r.s.owners[o.ID] = row
	return nil
}

// checkEmail asume el lock tomado.
func (r *ownerRepo) checkEmail(o owners.Owner) error {
	if o.Email == "" {
		return nil
	}
	for id, row := range r.s.owners {
		if id != o.ID && strings.EqualFold(row.o.Email, o.Email) {
			return apperr.Conflict("email %s already in use", o.Email)
		}
	}
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.owners[id]
	if !ok {
		return owners.Owner{}, apperr.NotFound("owner", id)
	}
	return r.hydrate(row.o), nil
}

func (r *ownerRepo) List(ctx context.Context, filter owners.ListFilter) ([]owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	rows := make([]ownerRow, 0, len(r.s.owners))
	for _, row := range r.s.owners {
		if search != "" &&
			!strings.Contains(strings.ToLower(row.o.Name), search) &&
			!strings.Contains(strings.ToLower(row.o.Email), search) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]owners.Owner, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.hydrate(row.o))
	}
	return out, nil
}

func (r *ownerRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.owners[id]; !ok {
		return apperr.NotFound("owner", id)
	}

	for pid, row := range r.s.pets {
		if row.p.OwnerID == id {
			r.s.deletePet(pid)
		}
	}
	delete(r.s.owners, id)
	r.s.docDelete(document.TableOwners, id)
	return nil
}

func (r *ownerRepo) hydrate(o owners.Owner) owners.Owner {
	o.Contact = r.s.docGet(document.TableOwners, o.ID)
	return o
}
