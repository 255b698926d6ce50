package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (
			id, name, phone, email, address, contact,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		o.ID,
		o.Name,
		o.Phone,
		o.Email,
		o.Address,
		o.Contact,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return mapError(err, writeTarget{entity: "owner", id: o.ID})
	}
	return nil
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET
			name = $2,
			phone = $3,
			email = $4,
			address = $5,
			contact = $6,
			updated_at = $7
		WHERE id = $1
	`,
		o.ID,
		o.Name,
		o.Phone,
		o.Email,
		o.Address,
		o.Contact,
		o.UpdatedAt,
	)
	if err != nil {
		return mapError(err, writeTarget{entity: "owner", id: o.ID})
	}
	return rowsAffected(res, "owner", o.ID)
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, contact, created_at, updated_at
		FROM owners
		WHERE id = $1
	`, id)

	o, err := scanOwner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, apperr.NotFound("owner", id)
	}
	return o, err
}

func (r *OwnersRepo) List(ctx context.Context, filter owners.ListFilter) ([]owners.Owner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, contact, created_at, updated_at
		FROM owners
		WHERE $1 = '' OR strpos(lower(name), $1) > 0 OR strpos(lower(email), $1) > 0
		ORDER BY seq
	`, strings.ToLower(filter.Search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Delete borra citas, mascotas y dueño en ese orden dentro de una transacción.
func (r *OwnersRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "owners", "owner", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM appointments
			WHERE pet_id IN (SELECT id FROM pets WHERE owner_id = $1)
		`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE owner_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
		return err
	})
}

func scanOwner(s scanner) (owners.Owner, error) {
	var o owners.Owner
	if err := s.Scan(
		&o.ID,
		&o.Name,
		&o.Phone,
		&o.Email,
		&o.Address,
		&o.Contact,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return owners.Owner{}, err
	}
	return o, nil
}
