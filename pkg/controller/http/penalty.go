package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

func assessPenaltyHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidentID := types.IncidentID(chi.URLParam(r, "incidentID"))

		p, err := uc.AssessPenalty(r.Context(), incidentID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		respondJSON(w, r, p)
	}
}

func getPenaltyHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		penaltyID := types.PenaltyID(chi.URLParam(r, "penaltyID"))

		p, err := uc.GetPenalty(r.Context(), penaltyID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, p)
	}
}

func listPenaltiesHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := penalty.ListFilter{
			IncidentID:   types.IncidentID(q.Get("incident_id")),
			AppealStatus: types.AppealStatus(q.Get("appeal_status")),
			SortBy:       penalty.SortKey(q.Get("sort")),
		}

		var err error
		if filter.Offset, err = queryInt(q.Get("offset"), 0); err != nil {
			handleError(w, r, err)
			return
		}
		if filter.Limit, err = queryInt(q.Get("limit"), 0); err != nil {
			handleError(w, r, err)
			return
		}
		if filter.Begin, err = queryTime(q.Get("begin")); err != nil {
			handleError(w, r, err)
			return
		}
		if filter.End, err = queryTime(q.Get("end")); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.ListPenalties(r.Context(), filter)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, result)
	}
}

type submitAppealRequest struct {
	Notes string `json:"notes"`
}

func submitAppealHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		penaltyID := types.PenaltyID(chi.URLParam(r, "penaltyID"))

		var req submitAppealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode appeal request",
				goerr.T(errs.TagInvalidRequest),
			))
			return
		}

		p, err := uc.SubmitAppeal(r.Context(), penaltyID, req.Notes)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, p)
	}
}

type decideAppealRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func decideAppealHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		penaltyID := types.PenaltyID(chi.URLParam(r, "penaltyID"))

		var req decideAppealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode decision request",
				goerr.T(errs.TagInvalidRequest),
			))
			return
		}

		action, err := types.ParseAppealAction(req.Action)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid appeal action",
				goerr.T(errs.TagInvalidRequest),
			))
			return
		}

		p, err := uc.DecideAppeal(r.Context(), penaltyID, action, req.Notes)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, p)
	}
}

func queryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid time query parameter, want RFC3339",
			goerr.T(errs.TagInvalidRequest),
			goerr.V("value", raw),
		)
	}
	return t, nil
}
