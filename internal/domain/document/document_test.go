package document

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/apperr"
)

func TestNormalize_NilIsEmpty(t *testing.T) {
	d, err := Normalize(nil)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Len(t, d, 0)
}

func TestNormalize_CanonicalNumbersAndLists(t *testing.T) {
	d, err := Normalize(map[string]any{
		"peso":     3,
		"alergias": []string{"penicilina"},
		"nested":   map[string]any{"n": int64(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, json.Number("3"), d["peso"])
	assert.Equal(t, []any{"penicilina"}, d["alergias"])
	assert.Equal(t, map[string]any{"n": json.Number("2")}, d["nested"])
}

func TestLargeIntegersRoundTrip(t *testing.T) {
	d, err := Parse([]byte(`{"ref":12345678901234567,"items":[{"id":98765432109876543}]}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567"), d["ref"])

	v, err := d.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref":12345678901234567,"items":[{"id":98765432109876543}]}`, v.(string))

	n, err := Normalize(d)
	require.NoError(t, err)
	assert.True(t, Equal(d, n))

	assert.True(t, Filter{Key: "ref", Value: ParseValue("12345678901234567"), MatchValue: true}.Matches(d))
	assert.False(t, Filter{Key: "ref", Value: ParseValue("12345678901234568"), MatchValue: true}.Matches(d))
}

func TestNormalize_RejectsNonJSON(t *testing.T) {
	cases := map[string]any{
		"nan":        map[string]any{"x": math.NaN()},
		"func":       map[string]any{"x": func() {}},
		"not object": []any{1, 2},
		"scalar":     "hola",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse([]byte(`{"microchip":"123","esterilizado":null}`))
	require.NoError(t, err)
	assert.True(t, d.Has("esterilizado"))
	assert.Nil(t, d["esterilizado"])

	empty, err := Parse([]byte("  null "))
	require.NoError(t, err)
	assert.Len(t, empty, 0)

	_, err = Parse([]byte(`[1,2]`))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMerge_IsShallowAndPreservesUnknownKeys(t *testing.T) {
	base := Document{
		"alergias":  []any{"penicilina"},
		"vacunas":   []any{"rabia"},
		"custom":    map[string]any{"a": float64(1)},
		"microchip": nil,
	}

	merged := base.Merge(Document{
		"microchip": "123",
		"custom":    map[string]any{"b": float64(2)},
	})

	assert.Equal(t, "123", merged["microchip"])
	assert.Equal(t, []any{"penicilina"}, merged["alergias"])
	assert.Equal(t, []any{"rabia"}, merged["vacunas"])
	// merge superficial: el objeto anidado se reemplaza entero
	assert.Equal(t, map[string]any{"b": float64(2)}, merged["custom"])

	// base no cambia
	assert.Nil(t, base["microchip"])
	assert.Equal(t, map[string]any{"a": float64(1)}, base["custom"])
}

func TestMerge_NullValueIsKeptAsNull(t *testing.T) {
	merged := Document{"esterilizado": true}.Merge(Document{"esterilizado": nil})
	assert.True(t, merged.Has("esterilizado"))
	assert.Nil(t, merged["esterilizado"])
}

func TestClone_IsDeep(t *testing.T) {
	d := Document{"list": []any{"a"}, "obj": map[string]any{"k": "v"}}
	c := d.Clone()

	c["list"].([]any)[0] = "z"
	c["obj"].(map[string]any)["k"] = "w"

	assert.Equal(t, "a", d["list"].([]any)[0])
	assert.Equal(t, "v", d["obj"].(map[string]any)["k"])
}

func TestEqual_JSONSemantics(t *testing.T) {
	assert.True(t, Equal(1, 1.0))
	assert.True(t, Equal(json.Number("1.50"), 1.5))
	assert.True(t, Equal(json.Number("1e2"), 100))
	assert.True(t, Equal([]string{"a", "b"}, []any{"a", "b"}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(false, nil))
	assert.False(t, Equal("1", 1))
}

func TestFilter_Matches(t *testing.T) {
	d := Document{"pago": "pagado", "requiere_seguimiento": false}

	assert.True(t, Filter{Key: "pago"}.Matches(d))
	assert.True(t, Filter{Key: "pago", Value: "pagado", MatchValue: true}.Matches(d))
	assert.False(t, Filter{Key: "pago", Value: "pendiente", MatchValue: true}.Matches(d))
	assert.True(t, Filter{Key: "requiere_seguimiento", Value: false, MatchValue: true}.Matches(d))
	assert.False(t, Filter{Key: "veterinario"}.Matches(d))
}

func TestValueScan_RoundTrip(t *testing.T) {
	d := Document{"alergias": []any{"penicilina"}, "coste": 45.5}

	v, err := d.Value()
	require.NoError(t, err)

	var back Document
	require.NoError(t, back.Scan(v))
	assert.True(t, Equal(d, back), "got %v", back)
	assert.Equal(t, json.Number("45.5"), back["coste"])

	var fromNull Document
	require.NoError(t, fromNull.Scan(nil))
	assert.NotNil(t, fromNull)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, json.Number("3"), ParseValue("3"))
	assert.Equal(t, "3 4", ParseValue("3 4"))
	assert.Equal(t, "pagado", ParseValue("pagado"))
	assert.Equal(t, "pagado", ParseValue(`"pagado"`))
}

func TestCheckTable(t *testing.T) {
	assert.NoError(t, CheckTable(TablePets))
	assert.ErrorIs(t, CheckTable(Table("users; drop")), apperr.ErrValidation)
}
