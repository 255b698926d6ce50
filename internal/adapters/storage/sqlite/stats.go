package sqlite

import (
	"context"
	"database/sql"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/stats"
)

type statsReader struct {
	db *sql.DB
}

// Compute hace todas las lecturas dentro de una misma transacción.
func (r *statsReader) Compute(ctx context.Context, w stats.Window) (stats.Snapshot, error) {
	snap := stats.Snapshot{ByStatus: make(map[appointments.Status]int)}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM owners),
				(SELECT COUNT(*) FROM pets),
				(SELECT COUNT(*) FROM appointments),
				(SELECT COUNT(*) FROM appointments WHERE scheduled_at >= ? AND scheduled_at < ?),
				(SELECT COUNT(*) FROM appointments WHERE status = ? AND scheduled_at >= ?)
		`, formatTime(w.DayStart), formatTime(w.DayEnd),
			string(appointments.StatusScheduled), formatTime(w.Now),
		).Scan(&snap.TotalOwners, &snap.TotalPets, &snap.TotalAppointments, &snap.Today, &snap.Upcoming); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
		if err != nil {
			return err
		}
		for rows.Next() {
			var (
				st string
				n  int
			)
			if err := rows.Scan(&st, &n); err != nil {
				rows.Close()
				return err
			}
			snap.ByStatus[appointments.Status(st)] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = tx.QueryContext(ctx, `SELECT species, COUNT(*) FROM pets GROUP BY species`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c stats.SpeciesCount
			if err := rows.Scan(&c.Species, &c.Total); err != nil {
				return err
			}
			snap.PetsBySpecies = append(snap.PetsBySpecies, c)
		}
		return rows.Err()
	})
	if err != nil {
		return stats.Snapshot{}, err
	}
	return snap, nil
}
