package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

type reportIncidentRequest struct {
	DeviceID string `json:"device_id"`
}

func reportIncidentHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportIncidentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode incident report",
				goerr.T(errs.TagInvalidRequest),
			))
			return
		}

		inc, err := uc.ReportIncident(r.Context(), types.DeviceID(req.DeviceID))
		if err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		respondJSON(w, r, inc)
	}
}

func getIncidentHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidentID := types.IncidentID(chi.URLParam(r, "incidentID"))

		inc, err := uc.GetIncident(r.Context(), incidentID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, inc)
	}
}

type acknowledgeIncidentRequest struct {
	OperatorID string `json:"operator_id"`
}

func acknowledgeIncidentHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidentID := types.IncidentID(chi.URLParam(r, "incidentID"))

		var req acknowledgeIncidentRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to decode acknowledge request",
					goerr.T(errs.TagInvalidRequest),
				))
				return
			}
		}

		inc, err := uc.AcknowledgeIncident(r.Context(), incidentID, types.OperatorID(req.OperatorID))
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, inc)
	}
}

func resolveIncidentHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidentID := types.IncidentID(chi.URLParam(r, "incidentID"))

		inc, err := uc.ResolveIncident(r.Context(), incidentID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, inc)
	}
}

func listIncidentsHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var statuses []types.IncidentStatus
		for _, raw := range q["status"] {
			statuses = append(statuses, types.IncidentStatus(raw))
		}

		offset, err := queryInt(q.Get("offset"), 0)
		if err != nil {
			handleError(w, r, err)
			return
		}
		limit, err := queryInt(q.Get("limit"), 0)
		if err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.ListIncidents(r.Context(), statuses, offset, limit)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, result)
	}
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid integer query parameter",
			goerr.T(errs.TagInvalidRequest),
			goerr.V("value", raw),
		)
	}
	return v, nil
}
