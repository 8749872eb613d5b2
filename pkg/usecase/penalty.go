package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/event"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

// AssessPenalty derives a penalty from the incident's zero-sales window and
// charges it to the driver currently assigned to the device. At most one
// active (non-rejected) penalty may exist per incident at a time; the
// repository rejects re-assessment with a conflict while one exists.
func (u *UseCases) AssessPenalty(ctx context.Context, incidentID types.IncidentID) (*penalty.Penalty, error) {
	if err := incidentID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid incident ID", goerr.T(errs.TagValidation))
	}
	if u.registry == nil {
		return nil, goerr.New("device registry is not configured",
			goerr.T(errs.TagInternal))
	}

	inc, err := u.repository.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load incident",
			goerr.TV(errs.IncidentIDKey, incidentID))
	}

	driverID, err := u.registry.GetAssignedDriver(ctx, inc.DeviceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve responsible driver",
			goerr.TV(errs.DeviceIDKey, inc.DeviceID))
	}

	now := clock.Now(ctx)
	outage := inc.Outage(now)
	if inc.ResolvedAt != nil {
		outage = inc.Outage(*inc.ResolvedAt)
	}

	amount := u.policy.Amount(outage)
	p := penalty.New(ctx, inc.ID, driverID, amount, u.policy.Currency)

	if err := u.repository.CreatePenalty(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to create penalty",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.TV(errs.DriverIDKey, driverID),
		)
	}

	logging.From(ctx).Info("penalty assessed",
		"penalty_id", p.ID,
		"incident_id", inc.ID,
		"driver_id", driverID,
		"amount", amount,
		"outage", outage,
	)

	u.notifier.NotifyPenaltyAssessed(ctx, &event.PenaltyAssessedEvent{
		PenaltyID:  p.ID,
		IncidentID: p.IncidentID,
		DriverID:   p.DriverID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Outage:     outage,
	})

	return &p, nil
}

func (u *UseCases) GetPenalty(ctx context.Context, penaltyID types.PenaltyID) (*penalty.Penalty, error) {
	if err := penaltyID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid penalty ID", goerr.T(errs.TagValidation))
	}
	return u.repository.GetPenalty(ctx, penaltyID)
}

func (u *UseCases) ListPenalties(ctx context.Context, filter penalty.ListFilter) (*penalty.ListResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid penalty filter", goerr.T(errs.TagValidation))
	}

	total, err := u.repository.CountPenalties(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count penalties")
	}
	items, err := u.repository.ListPenalties(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list penalties")
	}

	return penalty.NewListResult(items, total, filter.Offset, filter.Limit), nil
}
