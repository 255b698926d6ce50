package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_id,
	name, species, breed,
	birth_date, weight_kg, medical,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		string(p.Species),
		p.Breed,
		toNullDate(p.BirthDate),
		toNullFloat(p.WeightKg),
		p.Medical,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapError(err, writeTarget{entity: "pet", id: p.ID, ref: "owner", refID: p.OwnerID})
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, r.db, id, false)
}

func getPet(ctx context.Context, q queryer, id string, forUpdate bool) (pets.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPet(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, apperr.NotFound("pet", id)
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []pets.Pet{}, nil
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.OwnerID != "" {
		where = append(where, `owner_id = `+arg(filter.OwnerID))
	}
	if s := strings.ToLower(filter.Species); s != "" {
		where = append(where, `strpos(lower(species), `+arg(s)+`) > 0`)
	}
	if len(filter.IDs) > 0 {
		where = append(where, `id = ANY(`+arg(filter.IDs)+`::text[])`)
	}

	query := `SELECT ` + petColumns + ` FROM pets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq`

	return queryPets(ctx, r.db, query, args...)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	return queryPets(ctx, r.db, `SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY seq`, ownerID)
}

// Update bloquea la fila, aplica el patch (merge del documento incluido) y escribe.
func (r *PetsRepo) Update(ctx context.Context, id string, patch pets.Patch, at time.Time) (pets.Pet, error) {
	var out pets.Pet
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		current, err := getPet(ctx, tx, id, true)
		if err != nil {
			return err
		}

		out = current.Apply(patch, at)
		_, err = tx.ExecContext(ctx, `
			UPDATE pets
			SET
				name = $2,
				species = $3,
				breed = $4,
				birth_date = $5,
				weight_kg = $6,
				medical = $7,
				updated_at = $8
			WHERE id = $1
		`,
			id,
			out.Name,
			string(out.Species),
			out.Breed,
			toNullDate(out.BirthDate),
			toNullFloat(out.WeightKg),
			out.Medical,
			out.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return pets.Pet{}, err
	}
	return out, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "pets", "pet", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE pet_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
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
		p       pets.Pet
		species string
		bd      sql.NullTime
		weight  sql.NullFloat64
	)
	if err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&species,
		&p.Breed,
		&bd,
		&weight,
		&p.Medical,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	// ojo: birth_date es date, pgx lo mapea a time.Time midnight UTC
	p.BirthDate = fromNullDate(bd)
	p.WeightKg = fromNullFloat(weight)
	return p, nil
}
