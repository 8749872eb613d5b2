package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

// SubmitAppeal starts an appeal on a penalty. Only one appeal per penalty:
// any state other than none is a conflict.
func (u *UseCases) SubmitAppeal(ctx context.Context, penaltyID types.PenaltyID, notes string) (*penalty.Penalty, error) {
	if err := penaltyID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid penalty ID", goerr.T(errs.TagValidation))
	}

	p, err := u.repository.SubmitAppeal(ctx, penaltyID, notes, clock.Now(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit appeal",
			goerr.TV(errs.PenaltyIDKey, penaltyID))
	}

	logging.From(ctx).Info("appeal submitted",
		"penalty_id", p.ID,
		"incident_id", p.IncidentID,
	)

	return p, nil
}

// DecideAppeal adjudicates a pending appeal. Approval also clears the
// PenaltyFlag on the originating incident; both writes happen in one
// repository transaction. The submit action is not a decision and is
// rejected before touching persisted state, as is any unknown action.
func (u *UseCases) DecideAppeal(ctx context.Context, penaltyID types.PenaltyID, action types.AppealAction, notes string) (*penalty.Penalty, error) {
	if err := penaltyID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid penalty ID", goerr.T(errs.TagValidation))
	}

	var decision types.AppealStatus
	switch action {
	case types.AppealActionApprove:
		decision = types.AppealStatusApproved
	case types.AppealActionReject:
		decision = types.AppealStatusRejected
	default:
		return nil, goerr.New("action is not a valid appeal decision",
			goerr.T(errs.TagInvalidRequest),
			goerr.TV(errs.ActionKey, action.String()),
		)
	}

	p, err := u.repository.DecideAppeal(ctx, penaltyID, decision, notes, clock.Now(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decide appeal",
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.TV(errs.ActionKey, action.String()),
		)
	}

	logging.From(ctx).Info("appeal decided",
		"penalty_id", p.ID,
		"incident_id", p.IncidentID,
		"decision", decision.String(),
	)

	return p, nil
}
