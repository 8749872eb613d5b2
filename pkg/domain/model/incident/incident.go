package incident

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

// Incident is a confirmed operational anomaly tied to one device, tracked
// from open through acknowledgement to resolution. The Status tag is the
// single source of truth for transition validity; the timestamps are
// auxiliary metadata. Incidents are never deleted.
type Incident struct {
	ID       types.IncidentID     `json:"id"`
	DeviceID types.DeviceID       `json:"device_id"`
	Status   types.IncidentStatus `json:"status"`
	Source   types.IncidentSource `json:"source"`

	// StagingID links back to the originating zero-sales staging entry.
	// Empty for manually reported incidents.
	StagingID types.StagingID `json:"staging_id,omitempty"`

	// SilenceStartedAt is the start of the zero-sales window that triggered
	// the incident. The penalty policy derives the outage duration from it.
	SilenceStartedAt time.Time `json:"silence_started_at"`

	OpenedAt       time.Time  `json:"opened_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`

	AssignedOpsID types.OperatorID `json:"assigned_ops_id,omitempty"`

	// PenaltyFlag marks that an active (non-overturned) penalty exists for
	// this incident. Cleared only when an appeal is approved.
	PenaltyFlag bool `json:"penalty_flag"`
}

func New(ctx context.Context, deviceID types.DeviceID, source types.IncidentSource) Incident {
	now := clock.Now(ctx)
	return Incident{
		ID:               types.NewIncidentID(),
		DeviceID:         deviceID,
		Status:           types.IncidentStatusOpen,
		Source:           source,
		SilenceStartedAt: now,
		OpenedAt:         now,
		UpdatedAt:        now,
	}
}

func (x *Incident) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid incident ID")
	}
	if err := x.DeviceID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid device ID")
	}
	if err := x.Status.Validate(); err != nil {
		return goerr.Wrap(err, "invalid status")
	}
	if err := x.Source.Validate(); err != nil {
		return goerr.Wrap(err, "invalid source")
	}
	if x.OpenedAt.IsZero() {
		return goerr.New("opened_at is required", goerr.V("incident_id", x.ID))
	}
	return nil
}

// Outage returns the duration of the zero-sales window as of ref.
func (x *Incident) Outage(ref time.Time) time.Duration {
	return ref.Sub(x.SilenceStartedAt)
}
