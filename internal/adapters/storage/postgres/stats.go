package postgres

import (
	"context"
	"database/sql"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/stats"
)

type StatsReader struct {
	db *sql.DB
}

func NewStatsReader(db *sql.DB) *StatsReader {
	return &StatsReader{db: db}
}

// Compute lee dentro de una transacción REPEATABLE READ de solo lectura:
// todos los contadores salen del mismo snapshot.
func (r *StatsReader) Compute(ctx context.Context, w stats.Window) (stats.Snapshot, error) {
	snap := stats.Snapshot{ByStatus: make(map[appointments.Status]int)}
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

	err := withTx(ctx, r.db, opts, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM owners),
				(SELECT COUNT(*) FROM pets),
				(SELECT COUNT(*) FROM appointments),
				(SELECT COUNT(*) FROM appointments WHERE scheduled_at >= $1 AND scheduled_at < $2),
				(SELECT COUNT(*) FROM appointments WHERE status = $3 AND scheduled_at >= $4)
		`,
			w.DayStart,
			w.DayEnd,
			string(appointments.StatusScheduled),
			w.Now,
		).Scan(
			&snap.TotalOwners,
			&snap.TotalPets,
			&snap.TotalAppointments,
			&snap.Today,
			&snap.Upcoming,
		); err != nil {
			return err
		}

		if err := collect(ctx, tx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`, func(k string, n int) {
			snap.ByStatus[appointments.Status(k)] = n
		}); err != nil {
			return err
		}

		return collect(ctx, tx, `SELECT species, COUNT(*) FROM pets GROUP BY species`, func(k string, n int) {
			snap.PetsBySpecies = append(snap.PetsBySpecies, stats.SpeciesCount{Species: k, Total: n})
		})
	})
	if err != nil {
		return stats.Snapshot{}, err
	}
	return snap, nil
}

// collect recorre filas (clave, cantidad).
func collect(ctx context.Context, q queryer, query string, fn func(k string, n int)) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		fn(k, n)
	}
	return rows.Err()
}
