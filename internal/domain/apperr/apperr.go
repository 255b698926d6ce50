package apperr

import (
	"errors"
	"fmt"
)

// Taxonomía de errores del core. Servicios y adapters envuelven estos sentinels
// con fmt.Errorf("%w: ...") y la capa HTTP los clasifica con errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrReference         = errors.New("reference error")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
)

func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

func Reference(entity, id string) error {
	return fmt.Errorf("%w: %s %s does not exist", ErrReference, entity, id)
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Kind devuelve el sentinel que clasifica err, o nil si no pertenece a la taxonomía.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrReference, ErrInvalidTransition, ErrValidation, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
