package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const apptColumns = `
	id, pet_id,
	scheduled_at, status,
	reason, notes, consultation,
	created_at, updated_at`

// agendaSelect junta cada cita con su mascota y dueño en una sola lectura.
const agendaSelect = `
	SELECT
		a.id, a.pet_id,
		a.scheduled_at, a.status,
		a.reason, a.notes, a.consultation,
		a.created_at, a.updated_at,
		p.name, p.species,
		o.id, o.name, o.phone
	FROM appointments a
	JOIN pets p ON p.id = a.pet_id
	JOIN owners o ON o.id = p.owner_id`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+apptColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.PetID,
		a.ScheduledAt,
		string(a.Status),
		a.Reason,
		a.Notes,
		a.Consultation,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return mapError(err, writeTarget{entity: "appointment", id: a.ID, ref: "pet", refID: a.PetID})
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	return getAppointment(ctx, r.db, id, false)
}

func getAppointment(ctx context.Context, q queryer, id string, forUpdate bool) (appointments.Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	a, err := scanAppointment(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, apperr.NotFound("appointment", id)
	}
	return a, err
}

func (r *AppointmentsRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.AgendaEntry, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []appointments.AgendaEntry{}, nil
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.PetID != "" {
		where = append(where, `a.pet_id = `+arg(filter.PetID))
	}
	if filter.Status != "" {
		where = append(where, `a.status = `+arg(string(filter.Status)))
	}
	if len(filter.IDs) > 0 {
		where = append(where, `a.id = ANY(`+arg(filter.IDs)+`::text[])`)
	}

	query := agendaSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.scheduled_at, a.seq`

	return queryAgenda(ctx, r.db, query, args...)
}

func (r *AppointmentsRepo) ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return queryAppointments(ctx, r.db, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE pet_id = $1
		ORDER BY scheduled_at, seq
	`, petID)
}

func (r *AppointmentsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]appointments.AgendaEntry, error) {
	return queryAgenda(ctx, r.db, agendaSelect+`
		WHERE a.scheduled_at >= $1 AND a.scheduled_at < $2
		ORDER BY a.scheduled_at, a.seq
	`, from, to)
}

// TransitionStatus bloquea la fila (FOR UPDATE): un segundo escritor concurrente
// espera y luego ve el estado nuevo, así que falla con InvalidTransition.
func (r *AppointmentsRepo) TransitionStatus(ctx context.Context, id string, to appointments.Status, at time.Time) (appointments.Appointment, error) {
	var out appointments.Appointment
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		current, err := getAppointment(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := appointments.CheckTransition(current.Status, to); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $2, updated_at = $3
			WHERE id = $1
		`, id, string(to), at); err != nil {
			return mapError(err, writeTarget{entity: "appointment", id: id})
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

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "appointment", id)
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
			e      appointments.AgendaEntry
			status string
		)
		if err := rows.Scan(
			&e.ID,
			&e.PetID,
			&e.ScheduledAt,
			&status,
			&e.Reason,
			&e.Notes,
			&e.Consultation,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.PetName,
			&e.PetSpecies,
			&e.OwnerID,
			&e.OwnerName,
			&e.OwnerPhone,
		); err != nil {
			return nil, err
		}
		e.Status = appointments.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAppointment(s scanner) (appointments.Appointment, error) {
	var (
		a      appointments.Appointment
		status string
	)
	if err := s.Scan(
		&a.ID,
		&a.PetID,
		&a.ScheduledAt,
		&status,
		&a.Reason,
		&a.Notes,
		&a.Consultation,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}
	a.Status = appointments.Status(status)
	return a, nil
}
