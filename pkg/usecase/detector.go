package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/event"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/model/staging"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

// Decision is the outcome of one detector evaluation.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionOpen
	DecisionExtend
	DecisionDismiss
	DecisionPromote
)

func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionOpen:
		return "open"
	case DecisionExtend:
		return "extend"
	case DecisionDismiss:
		return "dismiss"
	case DecisionPromote:
		return "promote"
	}
	return "unknown"
}

// Evaluate decides what to do with a device's silence window. Pure function
// over the current open entry (nil if none), the last observed sale instant
// and the current time.
func Evaluate(entry *staging.Entry, lastSaleAt, now time.Time, cfg DetectorConfig) Decision {
	silence := now.Sub(lastSaleAt)

	if entry == nil {
		if silence > cfg.SilenceThreshold {
			return DecisionOpen
		}
		return DecisionNone
	}

	// Sales resumed after the window opened: the window is void, no matter
	// how much silence has built up since the sale. A new window for the
	// renewed silence starts clean.
	if lastSaleAt.After(entry.StartedAt) {
		return DecisionDismiss
	}

	if entry.Silence(now) > cfg.PromotionThreshold {
		return DecisionPromote
	}

	return DecisionExtend
}

// ReportActivity is the telemetry entry point: it evaluates the device's
// silence window and applies the resulting transition. Re-reporting the same
// state is a no-op, never a duplicate entry.
func (u *UseCases) ReportActivity(ctx context.Context, deviceID types.DeviceID, lastSaleAt time.Time) error {
	if err := deviceID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid device ID", goerr.T(errs.TagValidation))
	}
	if lastSaleAt.IsZero() {
		// Device never reported a sale; silence is counted from first
		// detection.
		lastSaleAt = clock.Now(ctx)
	}

	now := clock.Now(ctx)
	logger := logging.From(ctx)

	entry, err := u.repository.GetOpenStagingEntry(ctx, deviceID)
	if err != nil {
		return goerr.Wrap(err, "failed to load open staging entry",
			goerr.TV(errs.DeviceIDKey, deviceID))
	}

	decision := Evaluate(entry, lastSaleAt, now, u.detectorCfg)

	logger.Debug("detector evaluated",
		"device_id", deviceID,
		"decision", decision.String(),
		"last_sale_at", lastSaleAt,
	)

	switch decision {
	case DecisionNone, DecisionExtend:
		return nil

	case DecisionOpen:
		return u.openStagingEntry(ctx, deviceID, lastSaleAt)

	case DecisionDismiss:
		if _, err := u.repository.DismissStagingEntry(ctx, entry.ID, now); err != nil {
			return goerr.Wrap(err, "failed to dismiss staging entry",
				goerr.TV(errs.StagingIDKey, entry.ID))
		}
		logger.Info("staging entry dismissed, sales resumed",
			"staging_id", entry.ID,
			"device_id", deviceID,
		)
		// The renewed silence since the sale may itself already warrant a
		// fresh window.
		if Evaluate(nil, lastSaleAt, now, u.detectorCfg) == DecisionOpen {
			return u.openStagingEntry(ctx, deviceID, lastSaleAt)
		}
		return nil

	case DecisionPromote:
		return u.promoteStagingEntry(ctx, entry)
	}

	return goerr.New("unhandled detector decision",
		goerr.T(errs.TagInternal),
		goerr.V("decision", decision.String()),
	)
}

func (u *UseCases) openStagingEntry(ctx context.Context, deviceID types.DeviceID, lastSaleAt time.Time) error {
	newEntry := staging.New(ctx, deviceID, lastSaleAt)
	if err := u.repository.PutStagingEntry(ctx, newEntry); err != nil {
		return goerr.Wrap(err, "failed to open staging entry",
			goerr.TV(errs.DeviceIDKey, deviceID))
	}
	logging.From(ctx).Info("staging entry opened",
		"staging_id", newEntry.ID,
		"device_id", deviceID,
		"started_at", newEntry.StartedAt,
	)
	return nil
}

// promoteStagingEntry confirms a prolonged outage: the staging entry becomes
// promoted and an OPEN incident is created, atomically.
func (u *UseCases) promoteStagingEntry(ctx context.Context, entry *staging.Entry) error {
	inc := incident.New(ctx, entry.DeviceID, types.IncidentSourceDetector)
	inc.StagingID = entry.ID
	inc.SilenceStartedAt = entry.StartedAt

	created, err := u.repository.PromoteStagingEntry(ctx, entry.ID, inc)
	if err != nil {
		wrapped := goerr.Wrap(err, "failed to promote staging entry",
			goerr.TV(errs.StagingIDKey, entry.ID),
			goerr.TV(errs.DeviceIDKey, entry.DeviceID),
		)
		// Telemetry callers are machines; surface the failed promotion on
		// the notification channel so operators see it too.
		u.notifier.NotifyError(ctx, &event.ErrorEvent{
			Message: "failed to promote staging entry to incident",
			Error:   wrapped,
		})
		return wrapped
	}

	logging.From(ctx).Info("incident opened from staging entry",
		"incident_id", created.ID,
		"staging_id", entry.ID,
		"device_id", entry.DeviceID,
	)

	u.notifier.NotifyIncidentOpened(ctx, &event.IncidentOpenedEvent{
		IncidentID:       created.ID,
		DeviceID:         created.DeviceID,
		Source:           created.Source,
		SilenceStartedAt: created.SilenceStartedAt,
		OpenedAt:         created.OpenedAt,
	})

	return nil
}
