package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"vet-clinic/internal/adapters/storage"
	_ "vet-clinic/internal/apidocs"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Store storage.Store

	// Opcional: default logger.Nop().
	Logger logger.Logger

	// Zona horaria de la clínica para "hoy". nil = time.Local.
	Location *time.Location

	// Now reemplaza time.Now (tests).
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	st := opts.Store

	// Services por módulo
	apptOpts := []appointments.Option{appointments.WithLocation(loc)}
	if opts.Now != nil {
		apptOpts = append(apptOpts, appointments.WithClock(opts.Now))
	}
	apptsSvc := appointments.NewService(st.Appointments(), st.Documents(), apptOpts...)
	petsSvc := pets.NewService(st.Pets(), apptsSvc, st.Documents())
	ownersSvc := owners.NewService(st.Owners(), petsSvc)
	statsSvc := stats.NewService(st.Stats(), loc).WithClock(opts.Now)

	// Rutas por módulo
	owners.RegisterRoutes(r, ownersSvc, log)
	pets.RegisterRoutes(r, petsSvc, log)
	appointments.RegisterRoutes(r, apptsSvc, log)
	stats.RegisterRoutes(r, statsSvc, log)

	return r
}
