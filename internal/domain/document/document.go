package document

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strings"

	"vet-clinic/internal/domain/apperr"
)

// Document es el bloque flexible (sin schema) que acompaña a cada entidad.
// Solo admite valores JSON: null, bool, número finito, string, listas y objetos.
// Una key ausente y una key con valor null son cosas distintas y se preservan.
type Document map[string]any

// New devuelve un documento vacío (nunca nil).
func New() Document {
	return Document{}
}

// Normalize valida que v sea JSON bien formado y lo convierte a Document
// con tipos canónicos (números como json.Number, listas como []any).
// nil => documento vacío. Cualquier otra cosa que no sea un objeto => ErrValidation.
func Normalize(v any) (Document, error) {
	if v == nil {
		return New(), nil
	}
	if d, ok := v.(Document); ok && d == nil {
		return New(), nil
	}

	norm, err := normalizeValue(v)
	if err != nil {
		return nil, err
	}
	if norm == nil {
		return New(), nil
	}

	m, ok := norm.(map[string]any)
	if !ok {
		return nil, apperr.Validation("document must be a JSON object")
	}
	return Document(m), nil
}

// Parse decodifica JSON crudo a Document. Vacío o "null" => documento vacío.
func Parse(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return New(), nil
	}

	var m map[string]any
	if err := decode(raw, &m); err != nil {
		return nil, apperr.Validation("document must be a JSON object: %v", err)
	}
	if m == nil {
		return New(), nil
	}
	return Document(m), nil
}

// ParseValue interpreta un valor recibido como texto (query string).
// Si es JSON válido se usa tal cual ("true", "3", "[1]"); si no, como string.
func ParseValue(s string) any {
	var v any
	if err := decode([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// decode es json.Unmarshal con UseNumber: los enteros grandes no pasan por float64.
func decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func normalizeValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Validation("document is not JSON-like: %v", err)
	}
	var out any
	if err := decode(b, &out); err != nil {
		return nil, apperr.Validation("document is not JSON-like: %v", err)
	}
	return out, nil
}

// Has indica si la key está presente (aunque su valor sea null).
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Lookup devuelve el valor de una key de primer nivel.
func (d Document) Lookup(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

// Equals indica si la key está presente y su valor es igual (semántica JSON) a v.
func (d Document) Equals(key string, v any) bool {
	got, ok := d[key]
	if !ok {
		return false
	}
	return Equal(got, v)
}

// Merge hace un merge superficial: las keys de patch se agregan o sobreescriben,
// el resto queda intacto. No modifica d; devuelve un documento nuevo.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone hace una copia profunda.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Document:
		return map[string]any(t.Clone())
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Equal compara dos valores con semántica JSON (1 == 1.0, []string{"a"} == []any{"a"}).
// Los números se comparan por valor exacto, sin pasar por float64.
func Equal(a, b any) bool {
	na, err := normalizeValue(a)
	if err != nil {
		return false
	}
	nb, err := normalizeValue(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(canonical(na), canonical(nb))
}

// number es la forma canónica de un json.Number dentro de canonical.
type number string

func canonical(v any) any {
	switch t := v.(type) {
	case json.Number:
		r, ok := new(big.Rat).SetString(string(t))
		if !ok {
			return t
		}
		return number(r.RatString())
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = canonical(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = canonical(vv)
		}
		return s
	default:
		return v
	}
}

// Keys devuelve las keys de primer nivel (sin orden garantizado).
func (d Document) Keys() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	return out
}

// Value implementa driver.Valuer (columna JSON/JSONB).
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, apperr.Validation("document is not JSON-like: %v", err)
	}
	return string(b), nil
}

// Scan implementa sql.Scanner. NULL => documento vacío.
func (d *Document) Scan(src any) error {
	var raw []byte
	switch t := src.(type) {
	case nil:
		*d = New()
		return nil
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		return fmt.Errorf("document: cannot scan %T", src)
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Filter selecciona entidades por una key de su documento: existencia,
// o existencia + igualdad cuando MatchValue es true.
type Filter struct {
	Key        string
	Value      any
	MatchValue bool
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Key) == ""
}

func (f Filter) Matches(d Document) bool {
	if f.MatchValue {
		return d.Equals(f.Key, f.Value)
	}
	return d.Has(f.Key)
}
