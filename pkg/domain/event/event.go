package event

import (
	"time"

	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// Events emitted by the core pipeline. Delivery is fire-and-forget; a
// failing notifier must never roll back the transition that produced the
// event.

type IncidentOpenedEvent struct {
	IncidentID       types.IncidentID
	DeviceID         types.DeviceID
	Source           types.IncidentSource
	SilenceStartedAt time.Time
	OpenedAt         time.Time
}

type IncidentAcknowledgedEvent struct {
	IncidentID     types.IncidentID
	DeviceID       types.DeviceID
	AssignedOpsID  types.OperatorID
	AcknowledgedAt time.Time
}

type PenaltyAssessedEvent struct {
	PenaltyID  types.PenaltyID
	IncidentID types.IncidentID
	DriverID   types.DriverID
	Amount     int64
	Currency   string
	Outage     time.Duration
}

type ErrorEvent struct {
	Message string
	Error   error
}
