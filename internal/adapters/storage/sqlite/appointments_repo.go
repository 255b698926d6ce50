package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
)

type apptRepo struct {
	db *sql.DB
}

const apptColumns = `id, pet_id, scheduled_at, status, reason, notes, consultation, created_at, updated_at`

// agendaSelect junta cada cita con su mascota y dueño (las FKs garantizan que existen).
const agendaSelect = `
	SELECT a.id, a.pet_id, a.scheduled_at, a.status, a.reason, a.notes, a.consultation, a.created_at, a.updated_at,
		p.name, p.species, o.id, o.name, o.phone
	FROM appointments a
	JOIN pets p ON p.id = a.pet_id
	JOIN owners o ON o.id = p.owner_id`

func (r *apptRepo) Create(ctx context.Context, a appointments.Appointment) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "pets", a.PetID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Reference("pet", a.PetID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO appointments (`+apptColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.PetID, formatTime(a.ScheduledAt), string(a.Status), a.Reason, a.Notes,
			a.Consultation, formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
		if err != nil {
			return mapError(err, writeTarget{entity: "appointment", id: a.ID, ref: "pet", refID: a.PetID})
		}
		return nil
	})
}

func (r *apptRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	return getAppointment(ctx, r.db, id)
}

func getAppointment(ctx context.Context, q queryer, id string) (appointments.Appointment, error) {
	row := q.QueryRowContext(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, apperr.NotFound("appointment", id)
	}
	return a, err
}

func (r *apptRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.AgendaEntry, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []appointments.AgendaEntry{}, nil
	}

	var (
		where []string
		args  []any
	)
	if filter.PetID != "" {
		where = append(where, `a.pet_id = ?`)
		args = append(args, filter.PetID)
	}
	if filter.Status != "" {
		where = append(where, `a.status = ?`)
		args = append(args, string(filter.Status))
	}
	if len(filter.IDs) > 0 {
		clause, idArgs := inClause("a.id", filter.IDs)
		where = append(where, clause)
		args = append(args, idArgs...)
	}

	q := agendaSelect
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY a.scheduled_at, a.rowid`

	return queryAgenda(ctx, r.db, q, args...)
}

func (r *apptRepo) ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return queryAppointments(ctx, r.db,
		`SELECT `+apptColumns+` FROM appointments WHERE pet_id = ? ORDER BY scheduled_at, rowid`, petID)
}

func (r *apptRepo) ListBetween(ctx context.Context, from, to time.Time) ([]appointments.AgendaEntry, error) {
	return queryAgenda(ctx, r.db, agendaSelect+`
		WHERE a.scheduled_at >= ? AND a.scheduled_at < ?
		ORDER BY a.scheduled_at, a.rowid
	`, formatTime(from), formatTime(to))
}

// TransitionStatus valida contra el estado leído y actualiza con compare-and-swap.
func (r *apptRepo) TransitionStatus(ctx context.Context, id string, to appointments.Status, at time.Time) (appointments.Appointment, error) {
	var out appointments.Appointment
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := getAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := appointments.CheckTransition(current.Status, to); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE appointments SET status = ?, updated_at = ?
			WHERE id = ? AND status = ?
		`, string(to), formatTime(at), id, string(current.Status))
		if err != nil {
			return mapError(err, writeTarget{entity: "appointment", id: id})
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: appointment %s changed concurrently", apperr.ErrInvalidTransition, id)
		}

		out = current
		out.Status = to
		out.UpdatedAt = at
		return nil
	})
	if err != nil {
		return appointments.Appointment{}, err
	}
	return out, nil
}

func (r *apptRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("appointment", id)
	}
	return nil
}

func queryAppointments(ctx context.Context, q queryer, query string, args ...any) ([]appointments.Appointment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func queryAgenda(ctx context.Context, q queryer, query string, args ...any) ([]appointments.AgendaEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.AgendaEntry, 0)
	for rows.Next() {
		var (
			e                           appointments.AgendaEntry
			status                      string
			scheduled, created, updated string
		)
		if err := rows.Scan(
			&e.ID, &e.PetID, &scheduled, &status, &e.Reason, &e.Notes, &e.Consultation, &created, &updated,
			&e.PetName, &e.PetSpecies, &e.OwnerID, &e.OwnerName, &e.OwnerPhone,
		); err != nil {
			return nil, err
		}
		a, err := finishAppointment(e.Appointment, status, scheduled, created, updated)
		if err != nil {
			return nil, err
		}
		e.Appointment = a
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAppointment(s scanner) (appointments.Appointment, error) {
	var (
		a                           appointments.Appointment
		status                      string
		scheduled, created, updated string
	)
	if err := s.Scan(&a.ID, &a.PetID, &scheduled, &status, &a.Reason, &a.Notes, &a.Consultation, &created, &updated); err != nil {
		return appointments.Appointment{}, err
	}
	return finishAppointment(a, status, scheduled, created, updated)
}

// finishAppointment completa los campos que sqlite guarda como TEXT.
func finishAppointment(a appointments.Appointment, status, scheduled, created, updated string) (appointments.Appointment, error) {
	a.Status = appointments.Status(status)

	var err error
	if a.ScheduledAt, err = parseTime(scheduled); err != nil {
		return appointments.Appointment{}, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return appointments.Appointment{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return appointments.Appointment{}, err
	}
	return a, nil
}
