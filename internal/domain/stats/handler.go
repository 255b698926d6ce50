package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vet-clinic/internal/platform/httpx"
	"vet-clinic/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/stats", getStatsHandler(svc, log))
}

type speciesCountResponse struct {
	Species string `json:"species"`
	Total   int    `json:"total"`
}

// Response es también lo que imprime el comando `stats` del CLI.
type Response struct {
	TotalOwners       int                    `json:"total_owners"`
	TotalPets         int                    `json:"total_pets"`
	TotalAppointments int                    `json:"total_appointments"`
	ByStatus          map[string]int         `json:"appointments_by_status"`
	Today             int                    `json:"appointments_today"`
	Upcoming          int                    `json:"appointments_upcoming"`
	PetsBySpecies     []speciesCountResponse `json:"pets_by_species"`
}

// getStatsHandler godoc
// @Summary Números del dashboard
// @Description Se calculan en cada llamada, sin cache.
// @Tags stats
// @Produce json
// @Success 200 {object} Response
// @Router /stats [get]
func getStatsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Compute(r.Context())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(snap))
	}
}

func ToResponse(s Snapshot) Response {
	out := Response{
		TotalOwners:       s.TotalOwners,
		TotalPets:         s.TotalPets,
		TotalAppointments: s.TotalAppointments,
		ByStatus:          make(map[string]int, len(s.ByStatus)),
		Today:             s.Today,
		Upcoming:          s.Upcoming,
		PetsBySpecies:     make([]speciesCountResponse, 0, len(s.PetsBySpecies)),
	}
	for st, n := range s.ByStatus {
		out.ByStatus[string(st)] = n
	}
	for _, c := range s.PetsBySpecies {
		out.PetsBySpecies = append(out.PetsBySpecies, speciesCountResponse{Species: c.Species, Total: c.Total})
	}
	return out
}
