package stats

import "context"

// Reader calcula los contadores en una sola lectura consistente
// (un lock de lectura, o una sola query/transacción de lectura).
type Reader interface {
	Compute(ctx context.Context, w Window) (Snapshot, error)
}
