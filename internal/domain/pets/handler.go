package pets

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/platform/httpx"
	"vet-clinic/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, log))
		pr.Get("/", listPetsHandler(svc, log))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Patch("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))
	})
}

type createPetRequest struct {
	OwnerID   string         `json:"owner_id"`
	Name      string         `json:"name"`
	Species   string         `json:"species"`
	Breed     string         `json:"breed"`
	BirthDate string         `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg  *float64       `json:"weight_kg"`
	Medical   map[string]any `json:"medical" swaggertype:"object"`
}

type petResponse struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"owner_id"`
	Name      string            `json:"name"`
	Species   string            `json:"species"`
	Breed     string            `json:"breed"`
	BirthDate *string           `json:"birth_date,omitempty"`
	WeightKg  *float64          `json:"weight_kg,omitempty"`
	Medical   document.Document `json:"medical" swaggertype:"object"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type petAppointmentResponse struct {
	ID          string    `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
}

type petDetailResponse struct {
	petResponse
	Appointments []petAppointmentResponse `json:"appointments"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string        `json:"name"`
	Species  *string        `json:"species"`
	Breed    *string        `json:"breed"`
	WeightKg *float64       `json:"weight_kg"`
	Medical  map[string]any `json:"medical" swaggertype:"object"`
	// birth_date se lee aparte para distinguir null de "no enviado".
	BirthDate *string `json:"birth_date"`
}

// patchFields: cualquier otra key en el PATCH es un error.
var patchFields = map[string]bool{
	"name":       true,
	"species":    true,
	"breed":      true,
	"birth_date": true,
	"weight_kg":  true,
	"medical":    true,
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "owner_id debe existir; medical es un documento libre"
// @Success 201 {object} petResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse "owner inexistente"
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		bd, err := httpx.ParseDate("birth_date", req.BirthDate)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			OwnerID:   req.OwnerID,
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			BirthDate: bd,
			WeightKg:  req.WeightKg,
			Medical:   req.Medical,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Tags pets
// @Produce json
// @Param owner_id query string false "Solo las de este dueño"
// @Param species query string false "Substring de especie"
// @Param doc_key query string false "Key del documento médico que debe existir"
// @Param doc_value query string false "Valor (JSON o texto) que debe tener doc_key"
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), ListInput{
			OwnerID: q.Get("owner_id"),
			Species: q.Get("species"),
			Doc:     httpx.DocFilter(r),
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Obtener mascota con su historial de citas
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petDetailResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := petDetailResponse{
			petResponse:  toPetResponse(d.Pet),
			Appointments: make([]petAppointmentResponse, 0, len(d.Appointments)),
		}
		for _, a := range d.Appointments {
			out.Appointments = append(out.Appointments, petAppointmentResponse{
				ID:          a.ID,
				ScheduledAt: a.ScheduledAt,
				Status:      string(a.Status),
				Reason:      a.Reason,
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota (parcial)
// @Description Solo se tocan los campos enviados. `medical` se mergea sobre el documento actual. `birth_date: null` limpia la fecha. `owner_id` no se puede cambiar.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Para soportar birth_date: null, necesitamos detectar presencia del campo.
		// Estrategia: decodificar a map primero y después al struct.
		var raw map[string]json.RawMessage
		if err := httpx.DecodeJSON(r, &raw); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		for k := range raw {
			if !patchFields[k] {
				httpx.WriteError(w, log, apperr.Validation("field %q cannot be updated", k))
				return
			}
		}

		var req updatePetRequest
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			httpx.WriteError(w, log, apperr.Validation("invalid json: %v", err))
			return
		}

		patch := Patch{
			Name:     req.Name,
			Species:  req.Species,
			Breed:    req.Breed,
			WeightKg: req.WeightKg,
		}
		if v, ok := raw["medical"]; ok && string(v) != "null" {
			medical, err := document.Parse(v)
			if err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			patch.Medical = medical
		}
		if _, ok := raw["birth_date"]; ok {
			patch.BirthDate.Present = true
			if req.BirthDate != nil {
				bd, err := httpx.ParseDate("birth_date", *req.BirthDate)
				if err != nil {
					httpx.WriteError(w, log, err)
					return
				}
				patch.BirthDate.Value = bd
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), patch)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra también sus citas.
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toPetResponse(p Pet) petResponse {
	medical := p.Medical
	if medical == nil {
		medical = document.New()
	}

	var bd *string
	if p.BirthDate != nil {
		s := p.BirthDate.Format("2006-01-02")
		bd = &s
	}

	return petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   string(p.Species),
		Breed:     p.Breed,
		BirthDate: bd,
		WeightKg:  p.WeightKg,
		Medical:   medical,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
