package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/router"
)

var clinic = time.FixedZone("clinic", -3*60*60)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, clinic)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Store:    memory.New(),
		Location: clinic,
		Now:      func() time.Time { return now },
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ClinicDay(t *testing.T) {
	ts := newServer(t)

	// 1) Alta de dueño
	ownerID := create(t, ts.URL, "/owners", map[string]any{
		"name":    "Ana Pérez",
		"phone":   "555-0101",
		"email":   "ana@example.com",
		"contact": map[string]any{"preferred": "whatsapp"},
	})

	// 2) Email repetido => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
			"name":  "Otra Ana",
			"email": "ANA@example.com",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicated email, got %d body=%s", st, string(body))
		}
	}

	// 3) Mascota de un dueño inexistente => 422
	{
		st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{
			"owner_id": "missing",
			"name":     "Milo",
			"species":  "dog",
		})
		if st != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 unknown owner, got %d body=%s", st, string(body))
		}
	}

	// 4) Mascota válida
	petID := create(t, ts.URL, "/pets", map[string]any{
		"owner_id":   ownerID,
		"name":       "Milo",
		"species":    "dog",
		"birth_date": "2020-05-01",
		"weight_kg":  12.5,
		"medical":    map[string]any{"allergies": []string{"penicillin"}},
	})

	// 5) PATCH mergea medical y limpia birth_date
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID, map[string]any{
			"medical":    map[string]any{"vaccinated": true},
			"birth_date": nil,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch pet, got %d body=%s", st, string(body))
		}

		var got struct {
			BirthDate *string        `json:"birth_date"`
			Medical   map[string]any `json:"medical"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		require.Nil(t, got.BirthDate)
		require.Equal(t, true, got.Medical["vaccinated"])
		require.Equal(t, []any{"penicillin"}, got.Medical["allergies"])
	}

	// 6) owner_id no se puede cambiar por PATCH
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+petID, map[string]any{"owner_id": "x"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 patch owner_id, got %d", st)
		}
	}

	// 7) Citas: una hoy, otra mañana
	todayID := create(t, ts.URL, "/appointments", map[string]any{
		"pet_id":       petID,
		"scheduled_at": "2026-03-10T15:00:00-03:00",
		"reason":       "control",
		"consultation": map[string]any{"room": 2},
	})
	_ = create(t, ts.URL, "/appointments", map[string]any{
		"pet_id":       petID,
		"scheduled_at": "2026-03-11T09:00:00-03:00",
		"reason":       "vacuna",
	})

	// 8) /appointments/today devuelve solo la de hoy
	{
		st, body := doReq(t, ts.URL, "GET", "/appointments/today", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 today, got %d body=%s", st, string(body))
		}
		var got []struct {
			ID         string `json:"id"`
			PetName    string `json:"pet_name"`
			PetSpecies string `json:"pet_species"`
			OwnerID    string `json:"owner_id"`
			OwnerName  string `json:"owner_name"`
			OwnerPhone string `json:"owner_phone"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 1)
		require.Equal(t, todayID, got[0].ID)
		require.Equal(t, "Milo", got[0].PetName)
		require.Equal(t, "dog", got[0].PetSpecies)
		require.Equal(t, ownerID, got[0].OwnerID)
		require.Equal(t, "Ana Pérez", got[0].OwnerName)
		require.Equal(t, "555-0101", got[0].OwnerPhone)
	}

	// 9) Query por documento de consulta
	{
		st, body := doReq(t, ts.URL, "GET", "/appointments?doc_key=room&doc_value=2", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 doc query, got %d body=%s", st, string(body))
		}
		var got []struct {
			ID        string `json:"id"`
			PetName   string `json:"pet_name"`
			OwnerName string `json:"owner_name"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 1)
		require.Equal(t, todayID, got[0].ID)
		require.Equal(t, "Milo", got[0].PetName)
		require.Equal(t, "Ana Pérez", got[0].OwnerName)
	}

	// 10) Completar y después intentar cancelar => 409
	{
		st, body := doReq(t, ts.URL, "PATCH", "/appointments/"+todayID+"/status", map[string]any{"status": "completed"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "PATCH", "/appointments/"+todayID+"/status", map[string]any{"status": "cancelled"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 terminal transition, got %d body=%s", st, string(body))
		}
	}

	// 11) Stats
	{
		st, body := doReq(t, ts.URL, "GET", "/stats", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
		}
		var got struct {
			TotalOwners int            `json:"total_owners"`
			TotalPets   int            `json:"total_pets"`
			ByStatus    map[string]int `json:"appointments_by_status"`
			Today       int            `json:"appointments_today"`
			Upcoming    int            `json:"appointments_upcoming"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, 1, got.TotalOwners)
		require.Equal(t, 1, got.TotalPets)
		require.Equal(t, 1, got.ByStatus["completed"])
		require.Equal(t, 1, got.ByStatus["scheduled"])
		require.Equal(t, 0, got.ByStatus["no_show"])
		require.Equal(t, 1, got.Today)
		require.Equal(t, 1, got.Upcoming)
	}

	// 12) Borrar dueño borra todo en cascada
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/owners/"+ownerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete owner, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 pet after cascade, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/appointments/"+todayID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 appointment after cascade, got %d", st)
		}
	}
}

func TestHTTP_RejectsBadInput(t *testing.T) {
	ts := newServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid json", "POST", "/owners", `{"name":`, http.StatusBadRequest},
		{"owner without name", "POST", "/owners", map[string]any{"phone": "1"}, http.StatusBadRequest},
		{"bad birth_date", "POST", "/pets", map[string]any{"owner_id": "x", "name": "a", "species": "cat", "birth_date": "01/02/2020"}, http.StatusBadRequest},
		{"bad scheduled_at", "POST", "/appointments", map[string]any{"pet_id": "x", "scheduled_at": "mañana"}, http.StatusBadRequest},
		{"unknown status filter", "GET", "/appointments?status=done", nil, http.StatusBadRequest},
		{"unknown owner", "GET", "/owners/nope", nil, http.StatusNotFound},
		{"unknown appointment status change", "PATCH", "/appointments/nope/status", map[string]any{"status": "completed"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
			var e struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &e))
			require.NotEmpty(t, e.Error)
		})
	}
}

func TestHTTP_DocumentsKeepLargeIntegers(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/owners", `{"name":"Ana","contact":{"ref":12345678901234567,"saldo":1.10}}`)
	require.Equal(t, http.StatusCreated, st, string(body))
	require.Contains(t, string(body), `"ref":12345678901234567`)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	st, body = doReq(t, ts.URL, "GET", "/owners/"+created.ID, nil)
	require.Equal(t, http.StatusOK, st)
	require.Contains(t, string(body), `"ref":12345678901234567`)
	require.NotContains(t, string(body), `12345678901234568`)
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, st)
	require.Equal(t, "ok", string(body))
}

func create(t *testing.T, baseURL, path string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 POST %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("POST %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		// Cuerpo crudo, sin pasar por json.Marshal.
		rdr = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
