package interfaces

import (
	"context"
	"time"

	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// TelemetryUsecases is the inbound contract for the telemetry ingest
// collaborator.
type TelemetryUsecases interface {
	ReportActivity(ctx context.Context, deviceID types.DeviceID, lastSaleAt time.Time) error
}

// IncidentUsecases covers the operator-facing incident lifecycle.
type IncidentUsecases interface {
	ReportIncident(ctx context.Context, deviceID types.DeviceID) (*incident.Incident, error)
	GetIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error)
	AcknowledgeIncident(ctx context.Context, incidentID types.IncidentID, operatorID types.OperatorID) (*incident.Incident, error)
	ResolveIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error)
	ListIncidents(ctx context.Context, statuses []types.IncidentStatus, offset, limit int) (*incident.ListResult, error)
}

// PenaltyUsecases covers penalty assessment and the appeal workflow.
type PenaltyUsecases interface {
	AssessPenalty(ctx context.Context, incidentID types.IncidentID) (*penalty.Penalty, error)
	GetPenalty(ctx context.Context, penaltyID types.PenaltyID) (*penalty.Penalty, error)
	ListPenalties(ctx context.Context, filter penalty.ListFilter) (*penalty.ListResult, error)
	SubmitAppeal(ctx context.Context, penaltyID types.PenaltyID, notes string) (*penalty.Penalty, error)
	DecideAppeal(ctx context.Context, penaltyID types.PenaltyID, action types.AppealAction, notes string) (*penalty.Penalty, error)
}
