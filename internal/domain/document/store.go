package document

import (
	"context"
	"strings"

	"vet-clinic/internal/domain/apperr"
)

// Table identifica la colección dueña de un documento. Es un conjunto cerrado:
// los adapters SQL usan el valor para elegir tabla/columna.
type Table string

const (
	TableOwners       Table = "owners"
	TablePets         Table = "pets"
	TableAppointments Table = "appointments"
)

func (t Table) Valid() bool {
	switch t {
	case TableOwners, TablePets, TableAppointments:
		return true
	default:
		return false
	}
}

// Store es el adapter de documentos. Lo implementa cada backend de storage
// sobre la misma unidad de almacenamiento que los repositorios.
type Store interface {
	// Get devuelve el documento de la entidad (vacío si nunca se seteó).
	Get(ctx context.Context, table Table, id string) (Document, error)
	// Set reemplaza el documento completo.
	Set(ctx context.Context, table Table, id string, doc Document) error
	// Merge aplica un merge superficial y devuelve el documento resultante.
	Merge(ctx context.Context, table Table, id string, patch Document) (Document, error)

	QueryByKeyExists(ctx context.Context, table Table, key string) ([]string, error)
	QueryByKeyEquals(ctx context.Context, table Table, key string, value any) ([]string, error)
}

// CheckTable valida la tabla.
func CheckTable(t Table) error {
	if !t.Valid() {
		return apperr.Validation("unknown document table %q", string(t))
	}
	return nil
}

// CheckKey valida una key de consulta.
func CheckKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperr.Validation("document key is required")
	}
	return nil
}

// Query resuelve un Filter contra el Store.
func Query(ctx context.Context, s Store, table Table, f Filter) ([]string, error) {
	if f.MatchValue {
		return s.QueryByKeyEquals(ctx, table, f.Key, f.Value)
	}
	return s.QueryByKeyExists(ctx, table, f.Key)
}
