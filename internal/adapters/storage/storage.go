// Package storage elige el backend de persistencia según la configuración.
package storage

import (
	"context"
	"fmt"
	"strings"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/adapters/storage/sqlite"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store es lo que expone cada adapter: todos los repositorios sobre un mismo almacenamiento.
type Store interface {
	Owners() owners.Repository
	Pets() pets.Repository
	Appointments() appointments.Repository
	Documents() document.Store
	Stats() stats.Reader
	Close() error
}

type Options struct {
	Driver     string
	DSN        string
	SQLitePath string
	// Migrate crea el schema al abrir (drivers SQL).
	Migrate bool
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory:
		return memory.New(), nil

	case DriverPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, fmt.Errorf("storage: DB_DSN is required for driver %q", DriverPostgres)
		}
		db, err := postgres.Open(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		if opts.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("storage: migrate postgres: %w", err)
			}
		}
		return postgres.New(db), nil

	case DriverSQLite:
		db, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite siempre migra: el archivo puede ser nuevo.
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: migrate sqlite: %w", err)
		}
		return sqlite.New(db), nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
