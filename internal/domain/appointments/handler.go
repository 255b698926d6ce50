package appointments

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/platform/httpx"
	"vet-clinic/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", listAppointmentsHandler(svc, log))
		ar.Post("/", createAppointmentHandler(svc, log))
		ar.Get("/today", listTodayHandler(svc, log))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc, log))
		ar.Patch("/{appointmentID}/status", setStatusHandler(svc, log))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc, log))
	})
}

type createAppointmentRequest struct {
	PetID        string         `json:"pet_id"`
	ScheduledAt  string         `json:"scheduled_at" example:"2026-03-10T09:30:00-03:00"`
	Reason       string         `json:"reason"`
	Notes        string         `json:"notes"`
	Consultation map[string]any `json:"consultation" swaggertype:"object"`
}

type setStatusRequest struct {
	Status string `json:"status" enums:"completed,cancelled,no_show"`
}

type appointmentResponse struct {
	ID           string            `json:"id"`
	PetID        string            `json:"pet_id"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	Status       Status            `json:"status"`
	Reason       string            `json:"reason"`
	Notes        string            `json:"notes"`
	Consultation document.Document `json:"consultation" swaggertype:"object"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// agendaResponse agrega a la cita los datos que recepción necesita para llamar.
type agendaResponse struct {
	appointmentResponse
	PetName    string `json:"pet_name"`
	PetSpecies string `json:"pet_species"`
	OwnerID    string `json:"owner_id"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
}

// createAppointmentHandler godoc
// @Summary Agendar cita
// @Description La cita nace en estado `scheduled`. scheduled_at en RFC3339.
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body createAppointmentRequest true "Datos de la cita; consultation es un documento libre"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse "mascota inexistente"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAppointmentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		at, err := httpx.ParseTime("scheduled_at", req.ScheduledAt)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			PetID:        req.PetID,
			ScheduledAt:  at,
			Reason:       req.Reason,
			Notes:        req.Notes,
			Consultation: req.Consultation,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar citas
// @Description Orden por scheduled_at ascendente.
// @Tags appointments
// @Produce json
// @Param pet_id query string false "Solo las de esta mascota"
// @Param status query string false "scheduled | completed | cancelled | no_show"
// @Param doc_key query string false "Key del documento de consulta que debe existir"
// @Param doc_value query string false "Valor (JSON o texto) que debe tener doc_key"
// @Success 200 {array} agendaResponse
// @Failure 400 {object} httpx.ErrorResponse "status desconocido"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), ListInput{
			PetID:  q.Get("pet_id"),
			Status: q.Get("status"),
			Doc:    httpx.DocFilter(r),
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAgendaResponses(items))
	}
}

// listTodayHandler godoc
// @Summary Citas de hoy
// @Description Día calendario actual en la zona horaria de la clínica, con mascota y dueño.
// @Tags appointments
// @Produce json
// @Success 200 {array} agendaResponse
// @Router /appointments/today [get]
func listTodayHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListToday(r.Context())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAgendaResponses(items))
	}
}

// getAppointmentHandler godoc
// @Summary Obtener cita
// @Tags appointments
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// setStatusHandler godoc
// @Summary Cambiar estado de la cita
// @Description scheduled -> completed | cancelled | no_show. Los estados finales no cambian más.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body setStatusRequest true "Estado destino"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse "transición inválida"
// @Router /appointments/{appointmentID}/status [patch]
func setStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setStatusRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		a, err := svc.SetStatus(r.Context(), chi.URLParam(r, "appointmentID"), req.Status)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar cita
// @Tags appointments
// @Param appointmentID path string true "ID de la cita"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toAgendaResponses(items []AgendaEntry) []agendaResponse {
	out := make([]agendaResponse, 0, len(items))
	for _, e := range items {
		out = append(out, agendaResponse{
			appointmentResponse: toAppointmentResponse(e.Appointment),
			PetName:             e.PetName,
			PetSpecies:          e.PetSpecies,
			OwnerID:             e.OwnerID,
			OwnerName:           e.OwnerName,
			OwnerPhone:          e.OwnerPhone,
		})
	}
	return out
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	consultation := a.Consultation
	if consultation == nil {
		consultation = document.New()
	}
	return appointmentResponse{
		ID:           a.ID,
		PetID:        a.PetID,
		ScheduledAt:  a.ScheduledAt,
		Status:       a.Status,
		Reason:       a.Reason,
		Notes:        a.Notes,
		Consultation: consultation,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
