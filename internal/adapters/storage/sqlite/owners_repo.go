package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/owners"
)

type ownerRepo struct {
	db *sql.DB
}

const ownerColumns = `id, name, phone, email, address, contact, created_at, updated_at`

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (`+ownerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.Name, o.Phone, o.Email, o.Address, o.Contact, formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	if err != nil {
		return mapError(err, writeTarget{entity: "owner", id: o.ID})
	}
	return nil
}

func (r *ownerRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET name = ?, phone = ?, email = ?, address = ?, contact = ?, updated_at = ?
		WHERE id = ?
	`, o.Name, o.Phone, o.Email, o.Address, o.Contact, formatTime(o.UpdatedAt), o.ID)
	if err != nil {
		return mapError(err, writeTarget{entity: "owner", id: o.ID})
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("owner", o.ID)
	}
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = ?`, id)
	o, err := scanOwner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, apperr.NotFound("owner", id)
	}
	return o, err
}

func (r *ownerRepo) List(ctx context.Context, filter owners.ListFilter) ([]owners.Owner, error) {
	q := `SELECT ` + ownerColumns + ` FROM owners`
	var args []any
	if s := strings.ToLower(filter.Search); s != "" {
		q += ` WHERE instr(lower(name), ?) > 0 OR instr(lower(email), ?) > 0`
		args = append(args, s, s)
	}
	q += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, q, args...)
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
// El ON DELETE CASCADE del schema queda como respaldo.
func (r *ownerRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "owners", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("owner", id)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM appointments
			WHERE pet_id IN (SELECT id FROM pets WHERE owner_id = ?)
		`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE owner_id = ?`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM owners WHERE id = ?`, id)
		return err
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOwner(s scanner) (owners.Owner, error) {
	var (
		o                owners.Owner
		created, updated string
	)
	if err := s.Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &o.Address, &o.Contact, &created, &updated); err != nil {
		return owners.Owner{}, err
	}

	var err error
	if o.CreatedAt, err = parseTime(created); err != nil {
		return owners.Owner{}, err
	}
	if o.UpdatedAt, err = parseTime(updated); err != nil {
		return owners.Owner{}, err
	}
	return o, nil
}
