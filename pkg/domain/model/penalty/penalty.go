package penalty

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

// Penalty is a monetary consequence assessed against a driver for an
// incident. Once the appeal is approved or rejected the record is immutable.
type Penalty struct {
	ID         types.PenaltyID  `json:"id"`
	IncidentID types.IncidentID `json:"incident_id"`
	DriverID   types.DriverID   `json:"driver_id"`

	// Amount is in minor currency units (e.g. cents).
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`

	AppealStatus types.AppealStatus `json:"appeal_status"`
	AppealNotes  string             `json:"appeal_notes,omitempty"`
	DecidedAt    *time.Time         `json:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(ctx context.Context, incidentID types.IncidentID, driverID types.DriverID, amount int64, currency string) Penalty {
	now := clock.Now(ctx)
	return Penalty{
		ID:           types.NewPenaltyID(),
		IncidentID:   incidentID,
		DriverID:     driverID,
		Amount:       amount,
		Currency:     currency,
		AppealStatus: types.AppealStatusNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (x *Penalty) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid penalty ID")
	}
	if err := x.IncidentID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid incident ID")
	}
	if x.DriverID == types.EmptyDriverID {
		return goerr.New("driver ID is required", goerr.V("penalty_id", x.ID))
	}
	if x.Amount < 0 {
		return goerr.New("penalty amount must not be negative",
			goerr.V("penalty_id", x.ID), goerr.V("amount", x.Amount))
	}
	if err := x.AppealStatus.Validate(); err != nil {
		return goerr.Wrap(err, "invalid appeal status")
	}
	return nil
}

// IsActive reports whether the penalty blocks a new assessment for its
// incident. Only a rejected appeal frees the incident for re-assessment.
func (x *Penalty) IsActive() bool {
	return x.AppealStatus != types.AppealStatusRejected
}

// SortKey identifies a sortable column for penalty listings.
type SortKey string

const (
	SortByCreatedAt    SortKey = "created_at"
	SortByAppealStatus SortKey = "appeal_status"
)

func (s SortKey) Validate() error {
	switch s {
	case SortByCreatedAt, SortByAppealStatus, "":
		return nil
	}
	return goerr.New("invalid sort key", goerr.V("sort", s))
}

// ListFilter narrows and paginates penalty listings. Zero values mean
// "no constraint"; Limit == 0 falls back to the repository default.
type ListFilter struct {
	IncidentID   types.IncidentID
	AppealStatus types.AppealStatus
	Begin        time.Time
	End          time.Time
	Offset       int
	Limit        int
	SortBy       SortKey
}

func (f *ListFilter) Validate() error {
	if f.Offset < 0 {
		return goerr.New("offset must not be negative", goerr.V("offset", f.Offset))
	}
	if f.Limit < 0 {
		return goerr.New("limit must not be negative", goerr.V("limit", f.Limit))
	}
	if f.AppealStatus != "" {
		if err := f.AppealStatus.Validate(); err != nil {
			return err
		}
	}
	if err := f.SortBy.Validate(); err != nil {
		return err
	}
	return nil
}

// Match reports whether p satisfies the filter constraints (pagination
// excluded).
func (f *ListFilter) Match(p *Penalty) bool {
	if f.IncidentID != types.EmptyIncidentID && p.IncidentID != f.IncidentID {
		return false
	}
	if f.AppealStatus != "" && p.AppealStatus != f.AppealStatus {
		return false
	}
	if !f.Begin.IsZero() && p.CreatedAt.Before(f.Begin) {
		return false
	}
	if !f.End.IsZero() && !p.CreatedAt.Before(f.End) {
		return false
	}
	return true
}
