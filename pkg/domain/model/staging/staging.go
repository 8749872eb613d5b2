package staging

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

// Entry is a provisional record of suspected zero-sales silence for one
// device, not yet a formal incident. At most one entry per device may be
// open at any instant; the repository enforces the invariant.
type Entry struct {
	ID       types.StagingID     `json:"id"`
	DeviceID types.DeviceID      `json:"device_id"`
	Status   types.StagingStatus `json:"status"`

	// StartedAt is the beginning of the silence window, normally the last
	// observed sale instant.
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(ctx context.Context, deviceID types.DeviceID, startedAt time.Time) Entry {
	now := clock.Now(ctx)
	return Entry{
		ID:        types.NewStagingID(),
		DeviceID:  deviceID,
		Status:    types.StagingStatusOpen,
		StartedAt: startedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (x *Entry) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid staging entry ID")
	}
	if err := x.DeviceID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid device ID")
	}
	if err := x.Status.Validate(); err != nil {
		return goerr.Wrap(err, "invalid status")
	}
	if x.StartedAt.IsZero() {
		return goerr.New("staging window start is required", goerr.V("staging_id", x.ID))
	}
	return nil
}

// Silence returns how long the device has been silent as of now.
func (x *Entry) Silence(now time.Time) time.Duration {
	return now.Sub(x.StartedAt)
}
