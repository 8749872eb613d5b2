package interfaces

import (
	"context"
	"time"

	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/model/staging"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// Repository is the persistence boundary of the core. Every state
// transition method is an atomic check-then-write: the current status is
// verified against the required precondition and the new status written as
// one indivisible operation. A transition that loses a race returns a
// conflict-tagged error, never a silent overwrite.
type Repository interface {
	// Staging entries
	PutStagingEntry(ctx context.Context, entry staging.Entry) error
	GetStagingEntry(ctx context.Context, stagingID types.StagingID) (*staging.Entry, error)
	// GetOpenStagingEntry returns the open entry for the device, or nil if
	// the device has none.
	GetOpenStagingEntry(ctx context.Context, deviceID types.DeviceID) (*staging.Entry, error)
	GetStagingEntriesByDevice(ctx context.Context, deviceID types.DeviceID) ([]*staging.Entry, error)
	// DismissStagingEntry closes an open entry because sales resumed.
	// Conflict if the entry is not open.
	DismissStagingEntry(ctx context.Context, stagingID types.StagingID, endedAt time.Time) (*staging.Entry, error)
	// PromoteStagingEntry marks an open entry promoted and creates the
	// incident in one transaction. Conflict if the entry has already been
	// promoted or dismissed.
	PromoteStagingEntry(ctx context.Context, stagingID types.StagingID, inc incident.Incident) (*incident.Incident, error)

	// Incidents
	PutIncident(ctx context.Context, inc incident.Incident) error
	GetIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error)
	// AcknowledgeIncident performs OPEN -> ACKNOWLEDGED. An empty operator
	// keeps any pre-existing assignment. Conflict if not currently OPEN.
	AcknowledgeIncident(ctx context.Context, incidentID types.IncidentID, operatorID types.OperatorID, now time.Time) (*incident.Incident, error)
	// ResolveIncident performs ACKNOWLEDGED -> RESOLVED. Terminal.
	ResolveIncident(ctx context.Context, incidentID types.IncidentID, now time.Time) (*incident.Incident, error)
	ListIncidents(ctx context.Context, statuses []types.IncidentStatus, offset, limit int) ([]*incident.Incident, error)
	CountIncidents(ctx context.Context, statuses []types.IncidentStatus) (int, error)

	// Penalties
	// CreatePenalty stores the penalty and raises PenaltyFlag on the
	// originating incident in one transaction. Conflict if an active
	// (non-rejected) penalty already exists for the incident.
	CreatePenalty(ctx context.Context, p penalty.Penalty) error
	GetPenalty(ctx context.Context, penaltyID types.PenaltyID) (*penalty.Penalty, error)
	GetPenaltiesByIncident(ctx context.Context, incidentID types.IncidentID) ([]*penalty.Penalty, error)
	// SubmitAppeal performs none -> pending and stores the notes.
	SubmitAppeal(ctx context.Context, penaltyID types.PenaltyID, notes string, now time.Time) (*penalty.Penalty, error)
	// DecideAppeal performs pending -> approved|rejected. Approval also
	// clears PenaltyFlag on the originating incident; both writes happen in
	// the same transaction. Empty notes keep the previously stored notes.
	DecideAppeal(ctx context.Context, penaltyID types.PenaltyID, decision types.AppealStatus, notes string, now time.Time) (*penalty.Penalty, error)
	ListPenalties(ctx context.Context, filter penalty.ListFilter) ([]*penalty.Penalty, error)
	CountPenalties(ctx context.Context, filter penalty.ListFilter) (int, error)
}
