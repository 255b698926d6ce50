// Package httpx junta los helpers HTTP que antes se duplicaban en cada handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/platform/logger"
)

// ErrorResponse es el cuerpo de toda respuesta de error.
type ErrorResponse struct {
	Error string `json:"error" example:"not found: pet 3f1c..."`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor clasifica err según la taxonomía del dominio.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError responde {"error": ...}. Los 5xx se loguean y no exponen el detalle.
func WriteError(w http.ResponseWriter, log logger.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", map[string]any{"error": err.Error()})
		}
		msg = "internal error"
	}
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// DecodeJSON decodifica el body a v. Body vacío o JSON inválido => ErrValidation.
// Los números dentro de campos any quedan como json.Number.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}

// ParseDate acepta YYYY-MM-DD. Vacío => nil.
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Validation("%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}

// ParseTime acepta RFC3339 (con zona). Vacío => ErrValidation.
func ParseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be RFC3339", field)
	}
	return t, nil
}

// DocFilter lee ?doc_key=...&doc_value=... Sin doc_value es filtro de existencia.
// doc_value se interpreta como JSON si puede ("true", "3"), si no como string.
func DocFilter(r *http.Request) document.Filter {
	q := r.URL.Query()
	key := strings.TrimSpace(q.Get("doc_key"))
	if key == "" {
		return document.Filter{}
	}
	f := document.Filter{Key: key}
	if q.Has("doc_value") {
		f.Value = document.ParseValue(q.Get("doc_value"))
		f.MatchValue = true
	}
	return f
}
