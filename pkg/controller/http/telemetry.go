package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

type telemetryActivityRequest struct {
	DeviceID   string    `json:"device_id"`
	LastSaleAt time.Time `json:"last_sale_at"`
}

// telemetryActivityHandler receives periodic device activity reports and
// feeds them to the zero-sales detector.
func telemetryActivityHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req telemetryActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode activity report",
				goerr.T(errs.TagInvalidRequest),
			))
			return
		}

		if err := uc.ReportActivity(r.Context(), types.DeviceID(req.DeviceID), req.LastSaleAt); err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
