package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// seq da el orden de creación; los ids son UUID en texto.
const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL NOT NULL,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	contact    JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS owners_email_uq ON owners (email) WHERE email <> '';
CREATE INDEX IF NOT EXISTS owners_contact_gin ON owners USING GIN (contact);

CREATE TABLE IF NOT EXISTS pets (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL NOT NULL,
	owner_id   TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	species    TEXT NOT NULL,
	breed      TEXT NOT NULL DEFAULT '',
	birth_date DATE,
	weight_kg  DOUBLE PRECISION,
	medical    JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS pets_owner_idx ON pets (owner_id);
CREATE INDEX IF NOT EXISTS pets_medical_gin ON pets USING GIN (medical);

CREATE TABLE IF NOT EXISTS appointments (
	id           TEXT PRIMARY KEY,
	seq          BIGSERIAL NOT NULL,
	pet_id       TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
	scheduled_at TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL CHECK (status IN ('scheduled','completed','cancelled','no_show')),
	reason       TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	consultation JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS appointments_pet_idx ON appointments (pet_id);
CREATE INDEX IF NOT EXISTS appointments_scheduled_idx ON appointments (scheduled_at);
CREATE INDEX IF NOT EXISTS appointments_consultation_gin ON appointments USING GIN (consultation);
`

// Migrate crea el schema si no existe. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Store reparte los repositorios sobre un mismo pool.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Owners() owners.Repository             { return NewOwnersRepo(s.db) }
func (s *Store) Pets() pets.Repository                 { return NewPetsRepo(s.db) }
func (s *Store) Appointments() appointments.Repository { return NewAppointmentsRepo(s.db) }
func (s *Store) Documents() document.Store             { return NewDocumentStore(s.db) }
func (s *Store) Stats() stats.Reader                   { return NewStatsReader(s.db) }

func (s *Store) Close() error { return s.db.Close() }

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx corre fn en una transacción; cualquier error hace rollback completo.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// lockRow toma un lock de fila (FOR UPDATE) o devuelve NotFound.
func lockRow(ctx context.Context, tx *sql.Tx, table, entity, id string) error {
	var got string
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	return err
}

// Códigos SQLSTATE que se traducen a la taxonomía del dominio.
const (
	codeForeignKey = "23503"
	codeUnique     = "23505"
	codeCheck      = "23514"
)

const ownersEmailIndex = "owners_email_uq"

// writeTarget identifica la fila escrita y, si tiene FK, la fila a la que apunta.
type writeTarget struct {
	entity, id string
	ref, refID string
}

// mapError arma el mensaje según el SQLSTATE: una FK rota no es lo mismo que un id repetido.
func mapError(err error, t writeTarget) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeForeignKey:
		if t.ref == "" {
			return fmt.Errorf("%w: %s %s references a missing row", apperr.ErrReference, t.entity, t.id)
		}
		return apperr.Reference(t.ref, t.refID)
	case codeUnique:
		if pgErr.ConstraintName == ownersEmailIndex {
			return apperr.Conflict("owner email already in use")
		}
		return apperr.Conflict("%s %s already exists", t.entity, t.id)
	case codeCheck:
		return apperr.Validation("%s %s violates %s", t.entity, t.id, pgErr.ConstraintName)
	default:
		return err
	}
}

func rowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullDate(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
