package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/repository"
	"github.com/vendops-lab/vigil/pkg/usecase"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

func setupPenalty(t *testing.T, uc *usecase.UseCases, ctx context.Context) (types.IncidentID, types.PenaltyID) {
	t.Helper()
	inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)
	p := gt.R1(uc.AssessPenalty(ctx, inc.ID)).NoError(t)
	return inc.ID, p.ID
}

func TestAppealSubmit(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	_, penaltyID := setupPenalty(t, uc, ctx)

	p := gt.R1(uc.SubmitAppeal(ctx, penaltyID, "machine was out of stock, not broken")).NoError(t)
	gt.Equal(t, p.AppealStatus, types.AppealStatusPending)
	gt.Equal(t, p.AppealNotes, "machine was out of stock, not broken")

	t.Run("double submit conflicts", func(t *testing.T) {
		_, err := uc.SubmitAppeal(ctx, penaltyID, "again")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})
}

func TestAppealApproveClearsPenaltyFlag(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	incidentID, penaltyID := setupPenalty(t, uc, ctx)

	gt.R1(uc.SubmitAppeal(ctx, penaltyID, "not my fault")).NoError(t)

	p := gt.R1(uc.DecideAppeal(ctx, penaltyID, types.AppealActionApprove, "")).NoError(t)
	gt.Equal(t, p.AppealStatus, types.AppealStatusApproved)
	gt.NotNil(t, p.DecidedAt)

	// Approval clears the flag on the originating incident.
	inc := gt.R1(uc.GetIncident(ctx, incidentID)).NoError(t)
	gt.False(t, inc.PenaltyFlag)

	t.Run("approved is immutable", func(t *testing.T) {
		_, err := uc.DecideAppeal(ctx, penaltyID, types.AppealActionReject, "")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})
}

func TestAppealRejectKeepsPenaltyFlag(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	incidentID, penaltyID := setupPenalty(t, uc, ctx)

	gt.R1(uc.SubmitAppeal(ctx, penaltyID, "contested")).NoError(t)
	p := gt.R1(uc.DecideAppeal(ctx, penaltyID, types.AppealActionReject, "reviewed the logs")).NoError(t)
	gt.Equal(t, p.AppealStatus, types.AppealStatusRejected)
	gt.Equal(t, p.AppealNotes, "reviewed the logs")

	// The penalty stands: flag untouched.
	inc := gt.R1(uc.GetIncident(ctx, incidentID)).NoError(t)
	gt.True(t, inc.PenaltyFlag)
}

func TestAppealEmptyNotesKeepStored(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	_, penaltyID := setupPenalty(t, uc, ctx)

	gt.R1(uc.SubmitAppeal(ctx, penaltyID, "original reasoning")).NoError(t)
	p := gt.R1(uc.DecideAppeal(ctx, penaltyID, types.AppealActionApprove, "")).NoError(t)
	gt.Equal(t, p.AppealNotes, "original reasoning")
}

func TestAppealUnknownActionRejectedBeforePersistence(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	_, penaltyID := setupPenalty(t, uc, ctx)

	gt.R1(uc.SubmitAppeal(ctx, penaltyID, "contested")).NoError(t)

	_, err := uc.DecideAppeal(ctx, penaltyID, types.AppealAction("escalate"), "")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagInvalidRequest))

	// Persisted state untouched.
	p := gt.R1(uc.GetPenalty(ctx, penaltyID)).NoError(t)
	gt.Equal(t, p.AppealStatus, types.AppealStatusPending)
}

func TestAppealSubmitIsNotADecision(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithRegistry(testRegistry()),
	)
	_, penaltyID := setupPenalty(t, uc, ctx)

	_, err := uc.DecideAppeal(ctx, penaltyID, types.AppealActionSubmit, "")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagInvalidRequest))
}

// TestAppealTransitionGrid exercises every appeal action from every appeal
// state and asserts that only the documented transitions succeed:
// none -> pending via submit, pending -> approved|rejected via decision.
func TestAppealTransitionGrid(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		state  types.AppealStatus
		action types.AppealAction
		ok     bool
	}
	cases := []testCase{
		{types.AppealStatusNone, types.AppealActionSubmit, true},
		{types.AppealStatusNone, types.AppealActionApprove, false},
		{types.AppealStatusNone, types.AppealActionReject, false},
		{types.AppealStatusPending, types.AppealActionSubmit, false},
		{types.AppealStatusPending, types.AppealActionApprove, true},
		{types.AppealStatusPending, types.AppealActionReject, true},
		{types.AppealStatusApproved, types.AppealActionSubmit, false},
		{types.AppealStatusApproved, types.AppealActionApprove, false},
		{types.AppealStatusApproved, types.AppealActionReject, false},
		{types.AppealStatusRejected, types.AppealActionSubmit, false},
		{types.AppealStatusRejected, types.AppealActionApprove, false},
		{types.AppealStatusRejected, types.AppealActionReject, false},
	}

	// advance drives a fresh penalty into the wanted state.
	advance := func(t *testing.T, uc *usecase.UseCases, ctx context.Context, penaltyID types.PenaltyID, state types.AppealStatus) {
		t.Helper()
		switch state {
		case types.AppealStatusNone:
		case types.AppealStatusPending:
			gt.R1(uc.SubmitAppeal(ctx, penaltyID, "contested")).NoError(t)
		case types.AppealStatusApproved:
			gt.R1(uc.SubmitAppeal(ctx, penaltyID, "contested")).NoError(t)
			gt.R1(uc.DecideAppeal(ctx, penaltyID, types.AppealActionApprove, "")).NoError(t)
		case types.AppealStatusRejected:
			gt.R1(uc.SubmitAppeal(ctx, penaltyID, "contested")).NoError(t)
			gt.R1(uc.DecideAppeal(ctx, penaltyID, types.AppealActionReject, "")).NoError(t)
		}
	}

	for _, tc := range cases {
		t.Run(string(tc.state)+"_"+string(tc.action), func(t *testing.T) {
			ctx := clock.With(context.Background(), fixedClock(base))
			uc := usecase.New(
				usecase.WithRepository(repository.NewMemory()),
				usecase.WithRegistry(testRegistry()),
			)
			_, penaltyID := setupPenalty(t, uc, ctx)
			advance(t, uc, ctx, penaltyID, tc.state)

			var err error
			if tc.action == types.AppealActionSubmit {
				_, err = uc.SubmitAppeal(ctx, penaltyID, "grid")
			} else {
				_, err = uc.DecideAppeal(ctx, penaltyID, tc.action, "grid")
			}

			if tc.ok {
				gt.NoError(t, err)
			} else {
				gt.Error(t, err)
			}

			// State after a failed attempt is unchanged.
			if !tc.ok {
				p := gt.R1(uc.GetPenalty(ctx, penaltyID)).NoError(t)
				gt.Equal(t, p.AppealStatus, tc.state)
			}
		})
	}
}

func TestAppealNotFound(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	_, err := uc.SubmitAppeal(ctx, types.NewPenaltyID(), "x")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagNotFound))

	_, err = uc.DecideAppeal(ctx, types.NewPenaltyID(), types.AppealActionApprove, "x")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagNotFound))
}
