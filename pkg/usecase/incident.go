package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/event"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

// ReportIncident opens an incident directly, bypassing the detector. Used
// when an operator confirms an outage by other means.
func (u *UseCases) ReportIncident(ctx context.Context, deviceID types.DeviceID) (*incident.Incident, error) {
	if err := deviceID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid device ID", goerr.T(errs.TagValidation))
	}

	inc := incident.New(ctx, deviceID, types.IncidentSourceManual)
	if err := u.repository.PutIncident(ctx, inc); err != nil {
		return nil, goerr.Wrap(err, "failed to store incident",
			goerr.TV(errs.DeviceIDKey, deviceID))
	}

	logging.From(ctx).Info("incident reported manually",
		"incident_id", inc.ID,
		"device_id", deviceID,
	)

	u.notifier.NotifyIncidentOpened(ctx, &event.IncidentOpenedEvent{
		IncidentID:       inc.ID,
		DeviceID:         inc.DeviceID,
		Source:           inc.Source,
		SilenceStartedAt: inc.SilenceStartedAt,
		OpenedAt:         inc.OpenedAt,
	})

	return &inc, nil
}

func (u *UseCases) GetIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error) {
	if err := incidentID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid incident ID", goerr.T(errs.TagValidation))
	}
	return u.repository.GetIncident(ctx, incidentID)
}

// AcknowledgeIncident transitions OPEN -> ACKNOWLEDGED. Under concurrent
// calls exactly one wins; the others get a conflict.
func (u *UseCases) AcknowledgeIncident(ctx context.Context, incidentID types.IncidentID, operatorID types.OperatorID) (*incident.Incident, error) {
	if err := incidentID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid incident ID", goerr.T(errs.TagValidation))
	}

	now := clock.Now(ctx)
	inc, err := u.repository.AcknowledgeIncident(ctx, incidentID, operatorID, now)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to acknowledge incident",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.TV(errs.OperatorIDKey, operatorID),
		)
	}

	logging.From(ctx).Info("incident acknowledged",
		"incident_id", inc.ID,
		"operator_id", inc.AssignedOpsID,
	)

	ackAt := now
	if inc.AcknowledgedAt != nil {
		ackAt = *inc.AcknowledgedAt
	}
	u.notifier.NotifyIncidentAcknowledged(ctx, &event.IncidentAcknowledgedEvent{
		IncidentID:     inc.ID,
		DeviceID:       inc.DeviceID,
		AssignedOpsID:  inc.AssignedOpsID,
		AcknowledgedAt: ackAt,
	})

	return inc, nil
}

// ResolveIncident transitions ACKNOWLEDGED -> RESOLVED. Terminal; the record
// is retained for audit.
func (u *UseCases) ResolveIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error) {
	if err := incidentID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid incident ID", goerr.T(errs.TagValidation))
	}

	inc, err := u.repository.ResolveIncident(ctx, incidentID, clock.Now(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve incident",
			goerr.TV(errs.IncidentIDKey, incidentID))
	}

	logging.From(ctx).Info("incident resolved", "incident_id", inc.ID)

	return inc, nil
}

func (u *UseCases) ListIncidents(ctx context.Context, statuses []types.IncidentStatus, offset, limit int) (*incident.ListResult, error) {
	for _, st := range statuses {
		if err := st.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid status filter", goerr.T(errs.TagValidation))
		}
	}
	if offset < 0 {
		return nil, goerr.New("offset must not be negative",
			goerr.T(errs.TagValidation), goerr.TV(errs.OffsetKey, offset))
	}
	if limit < 0 {
		return nil, goerr.New("limit must not be negative",
			goerr.T(errs.TagValidation), goerr.TV(errs.LimitKey, limit))
	}

	total, err := u.repository.CountIncidents(ctx, statuses)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count incidents")
	}
	items, err := u.repository.ListIncidents(ctx, statuses, offset, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incidents")
	}

	return incident.NewListResult(items, total, offset, limit), nil
}
