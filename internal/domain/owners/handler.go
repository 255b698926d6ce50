package owners

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/httpx"
	"vet-clinic/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/owners", func(or chi.Router) {
		or.Get("/", listOwnersHandler(svc, log))
		or.Post("/", createOwnerHandler(svc, log))

		or.Get("/{ownerID}", getOwnerHandler(svc, log))
		or.Put("/{ownerID}", updateOwnerHandler(svc, log))
		or.Delete("/{ownerID}", deleteOwnerHandler(svc, log))
	})
}

type ownerRequest struct {
	Name    string         `json:"name" example:"Ana Pérez"`
	Phone   string         `json:"phone" example:"555-0101"`
	Email   string         `json:"email" example:"ana@example.com"`
	Address string         `json:"address"`
	Contact map[string]any `json:"contact" swaggertype:"object"`
}

func (req ownerRequest) input() Input {
	return Input{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Contact: req.Contact,
	}
}

type ownerResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email,omitempty"`
	Address   string            `json:"address,omitempty"`
	Contact   document.Document `json:"contact" swaggertype:"object"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ownerPetResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
}

type ownerDetailResponse struct {
	ownerResponse
	Pets []ownerPetResponse `json:"pets"`
}

// listOwnersHandler godoc
// @Summary Listar dueños
// @Description Orden de alta. `search` filtra por nombre o email (sin distinguir mayúsculas).
// @Tags owners
// @Produce json
// @Param search query string false "Texto a buscar en nombre o email"
// @Success 200 {array} ownerResponse
// @Router /owners [get]
func listOwnersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// createOwnerHandler godoc
// @Summary Crear dueño
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body ownerRequest true "Datos del dueño; contact es un documento libre"
// @Success 201 {object} ownerResponse
// @Failure 400 {object} httpx.ErrorResponse "invalid json / name requerido / documento inválido"
// @Failure 409 {object} httpx.ErrorResponse "email en uso"
// @Router /owners [post]
func createOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		o, err := svc.Create(r.Context(), req.input())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// getOwnerHandler godoc
// @Summary Obtener dueño con sus mascotas
// @Tags owners
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} ownerDetailResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /owners/{ownerID} [get]
func getOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := ownerDetailResponse{
			ownerResponse: toOwnerResponse(d.Owner),
			Pets:          make([]ownerPetResponse, 0, len(d.Pets)),
		}
		for _, p := range d.Pets {
			out.Pets = append(out.Pets, toOwnerPetResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// updateOwnerHandler godoc
// @Summary Reemplazar datos del dueño
// @Description Update de registro completo: lo que no se envía queda vacío (incluido contact).
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Param payload body ownerRequest true "Registro completo"
// @Success 200 {object} ownerResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse "email en uso"
// @Router /owners/{ownerID} [put]
func updateOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		o, err := svc.Update(r.Context(), chi.URLParam(r, "ownerID"), req.input())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// deleteOwnerHandler godoc
// @Summary Borrar dueño
// @Description Borra también sus mascotas y las citas de esas mascotas.
// @Tags owners
// @Param ownerID path string true "ID del dueño"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /owners/{ownerID} [delete]
func deleteOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	contact := o.Contact
	if contact == nil {
		contact = document.New()
	}
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Phone:     o.Phone,
		Email:     o.Email,
		Address:   o.Address,
		Contact:   contact,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOwnerPetResponse(p pets.Pet) ownerPetResponse {
	return ownerPetResponse{
		ID:      p.ID,
		Name:    p.Name,
		Species: string(p.Species),
		Breed:   p.Breed,
	}
}
