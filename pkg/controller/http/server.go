package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

// UseCase is the full inbound surface the HTTP layer drives.
type UseCase interface {
	interfaces.TelemetryUsecases
	interfaces.IncidentUsecases
	interfaces.PenaltyUsecases
}

type Server struct {
	router *chi.Mux
}

type Options func(*Server)

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/hooks", func(r chi.Router) {
		r.Route("/telemetry", func(r chi.Router) {
			r.Post("/activity", telemetryActivityHandler(uc))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", listIncidentsHandler(uc))
			r.Post("/", reportIncidentHandler(uc))
			r.Route("/{incidentID}", func(r chi.Router) {
				r.Get("/", getIncidentHandler(uc))
				r.Post("/acknowledge", acknowledgeIncidentHandler(uc))
				r.Post("/resolve", resolveIncidentHandler(uc))
				r.Post("/penalty", assessPenaltyHandler(uc))
			})
		})

		r.Route("/penalties", func(r chi.Router) {
			r.Get("/", listPenaltiesHandler(uc))
			r.Route("/{penaltyID}", func(r chi.Router) {
				r.Get("/", getPenaltyHandler(uc))
				r.Post("/appeal", submitAppealHandler(uc))
				r.Post("/appeal/decision", decideAppealHandler(uc))
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, map[string]string{"status": "ok"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, r *http.Request, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent, just log it
		logging.From(r.Context()).Warn("failed to encode response", "error", err)
	}
}
