package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/pets"
)

type petRepo struct {
	db *sql.DB
}

const petColumns = `id, owner_id, name, species, breed, birth_date, weight_kg, medical, created_at, updated_at`

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "owners", p.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Reference("owner", p.OwnerID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pets (`+petColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.OwnerID, p.Name, string(p.Species), p.Breed,
			datePtrToNull(p.BirthDate), floatPtrToNull(p.WeightKg), p.Medical,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		if err != nil {
			return mapError(err, writeTarget{entity: "pet", id: p.ID, ref: "owner", refID: p.OwnerID})
		}
		return nil
	})
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, r.db, id)
}

func getPet(ctx context.Context, q queryer, id string) (pets.Pet, error) {
	row := q.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, apperr.NotFound("pet", id)
	}
	return p, err
}

func (r *petRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []pets.Pet{}, nil
	}

	var (
		where []string
		args  []any
	)
	if filter.OwnerID != "" {
		where = append(where, `owner_id = ?`)
		args = append(args, filter.OwnerID)
	}
	if s := strings.ToLower(filter.Species); s != "" {
		where = append(where, `instr(lower(species), ?) > 0`)
		args = append(args, s)
	}
	if len(filter.IDs) > 0 {
		clause, idArgs := inClause("id", filter.IDs)
		where = append(where, clause)
		args = append(args, idArgs...)
	}

	q := `SELECT ` + petColumns + ` FROM pets`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY rowid`

	return queryPets(ctx, r.db, q, args...)
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	return queryPets(ctx, r.db, `SELECT `+petColumns+` FROM pets WHERE owner_id = ? ORDER BY rowid`, ownerID)
}

// Update lee, aplica el patch (con merge del documento) y escribe en la misma transacción.
func (r *petRepo) Update(ctx context.Context, id string, patch pets.Patch, at time.Time) (pets.Pet, error) {
	var out pets.Pet
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := getPet(ctx, tx, id)
		if err != nil {
			return err
		}

		out = current.Apply(patch, at)
		_, err = tx.ExecContext(ctx, `
			UPDATE pets
			SET name = ?, species = ?, breed = ?, birth_date = ?, weight_kg = ?, medical = ?, updated_at = ?
			WHERE id = ?
		`, out.Name, string(out.Species), out.Breed,
			datePtrToNull(out.BirthDate), floatPtrToNull(out.WeightKg), out.Medical,
			formatTime(out.UpdatedAt), id)
		return err
	})
	if err != nil {
		return pets.Pet{}, err
	}
	return out, nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "pets", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("pet", id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE pet_id = ?`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM pets WHERE id = ?`, id)
		return err
	})
}

func queryPets(ctx context.Context, q queryer, query string, args ...any) ([]pets.Pet, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p                pets.Pet
		species          string
		birth            sql.NullString
		weight           sql.NullFloat64
		created, updated string
	)
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &species, &p.Breed, &birth, &weight, &p.Medical, &created, &updated); err != nil {
		return pets.Pet{}, err
	}
	p.Species = pets.Species(species)
	p.WeightKg = nullToFloatPtr(weight)

	var err error
	if p.BirthDate, err = nullToDatePtr(birth); err != nil {
		return pets.Pet{}, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return pets.Pet{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return pets.Pet{}, err
	}
	return p, nil
}
