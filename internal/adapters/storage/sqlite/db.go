// Package sqlite es el adapter de storage embebido (un archivo, sin servidor).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
)

// Ancho fijo y siempre UTC: el orden lexicográfico del texto coincide con el temporal.
const (
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dateLayout = "2006-01-02"
)

// Open abre la base. path vacío o ":memory:" => base en memoria.
// Una sola conexión: sqlite serializa escrituras y así las transacciones no compiten.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		path = "file::memory:"
	} else if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	contact    TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS owners_email_uq ON owners(email) WHERE email <> '';

CREATE TABLE IF NOT EXISTS pets (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	species    TEXT NOT NULL,
	breed      TEXT NOT NULL DEFAULT '',
	birth_date TEXT,
	weight_kg  REAL,
	medical    TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS pets_owner_idx ON pets(owner_id);

CREATE TABLE IF NOT EXISTS appointments (
	id           TEXT PRIMARY KEY,
	pet_id       TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
	scheduled_at TEXT NOT NULL,
	status       TEXT NOT NULL CHECK (status IN ('scheduled','completed','cancelled','no_show')),
	reason       TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	consultation TEXT NOT NULL DEFAULT '{}',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS appointments_pet_idx ON appointments(pet_id);
CREATE INDEX IF NOT EXISTS appointments_scheduled_idx ON appointments(scheduled_at);
`

// Migrate crea el schema si no existe. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Store reparte los repositorios sobre una misma *sql.DB.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Owners() owners.Repository             { return &ownerRepo{db: s.db} }
func (s *Store) Pets() pets.Repository                 { return &petRepo{db: s.db} }
func (s *Store) Appointments() appointments.Repository { return &apptRepo{db: s.db} }
func (s *Store) Documents() document.Store             { return &docStore{db: s.db} }
func (s *Store) Stats() stats.Reader                   { return &statsReader{db: s.db} }

func (s *Store) Close() error { return s.db.Close() }

// queryer lo cumplen *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx corre fn en una transacción; cualquier error hace rollback completo.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func exists(ctx context.Context, q queryer, table, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// writeTarget identifica la fila escrita y, si tiene FK, la fila a la que apunta.
type writeTarget struct {
	entity, id string
	ref, refID string
}

// mapError traduce violaciones de constraints a la taxonomía del dominio,
// con un mensaje distinto por tipo de constraint.
func mapError(err error, t writeTarget) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if t.ref == "" {
			return fmt.Errorf("%w: %s %s references a missing row", apperr.ErrReference, t.entity, t.id)
		}
		return apperr.Reference(t.ref, t.refID)
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		// sqlite no expone el nombre del índice; el mensaje trae tabla.columna.
		if strings.Contains(se.Error(), "owners.email") {
			return apperr.Conflict("owner email already in use")
		}
		return apperr.Conflict("%s %s already exists", t.entity, t.id)
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperr.Conflict("%s %s already exists", t.entity, t.id)
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return apperr.Validation("%s %s violates a check constraint", t.entity, t.id)
	default:
		return err
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func datePtrToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(dateLayout), Valid: true}
}

func nullToDatePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("sqlite: bad date %q: %w", ns.String, err)
	}
	return &t, nil
}

func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// inClause arma "col IN (?,?,...)" para un conjunto de ids.
func inClause(col string, ids []string) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return col + " IN (" + strings.Join(marks, ",") + ")", args
}
