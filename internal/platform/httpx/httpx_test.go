package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/platform/logger"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("pet", "x"), http.StatusNotFound},
		{apperr.Reference("owner", "x"), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: completed -> cancelled", apperr.ErrInvalidTransition), http.StatusConflict},
		{apperr.Conflict("email taken"), http.StatusConflict},
		{apperr.Validation("bad"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, logger.Nop(), errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)

	rec = httptest.NewRecorder()
	WriteError(rec, nil, apperr.NotFound("pet", "p-1"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "p-1")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.ErrorIs(t, DecodeJSON(r, &v), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	require.ErrorIs(t, DecodeJSON(r, &v), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Rex"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "Rex", v.Name)
}

func TestDecodeJSONKeepsLargeIntegers(t *testing.T) {
	var v struct {
		Contact map[string]any `json:"contact"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"contact":{"ref":12345678901234567}}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, json.Number("12345678901234567"), v.Contact["ref"])
}

func TestParseDateAndTime(t *testing.T) {
	d, err := ParseDate("birth_date", "")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("birth_date", "2020-05-04")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 2020, d.Year())

	_, err = ParseDate("birth_date", "04/05/2020")
	require.ErrorIs(t, err, apperr.ErrValidation)

	ts, err := ParseTime("scheduled_at", "2026-03-10T09:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, 12, ts.UTC().Hour())

	_, err = ParseTime("scheduled_at", "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDocFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pets", nil)
	assert.True(t, DocFilter(r).IsZero())

	r = httptest.NewRequest(http.MethodGet, "/pets?doc_key=microchip", nil)
	f := DocFilter(r)
	assert.Equal(t, "microchip", f.Key)
	assert.False(t, f.MatchValue)

	r = httptest.NewRequest(http.MethodGet, "/appointments?doc_key=pago&doc_value=pagado", nil)
	f = DocFilter(r)
	assert.True(t, f.MatchValue)
	assert.Equal(t, "pagado", f.Value)

	r = httptest.NewRequest(http.MethodGet, "/pets?doc_key=esterilizado&doc_value=true", nil)
	assert.Equal(t, true, DocFilter(r).Value)
}
