package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/model/staging"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/repository"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

func testContext(at time.Time) context.Context {
	return clock.With(context.Background(), func() time.Time { return at })
}

func TestStagingEntryLifecycle(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := testContext(base)
	repo := repository.NewMemory()
	deviceID := types.DeviceID("vm-001")

	entry := staging.New(ctx, deviceID, base.Add(-45*time.Minute))
	gt.NoError(t, repo.PutStagingEntry(ctx, entry))

	t.Run("get by ID", func(t *testing.T) {
		got := gt.R1(repo.GetStagingEntry(ctx, entry.ID)).NoError(t)
		gt.Equal(t, got.DeviceID, deviceID)
		gt.Equal(t, got.Status, types.StagingStatusOpen)
	})

	t.Run("open entry lookup", func(t *testing.T) {
		got := gt.R1(repo.GetOpenStagingEntry(ctx, deviceID)).NoError(t)
		gt.NotNil(t, got)
		gt.Equal(t, got.ID, entry.ID)

		none := gt.R1(repo.GetOpenStagingEntry(ctx, types.DeviceID("vm-999"))).NoError(t)
		gt.Nil(t, none)
	})

	t.Run("second open entry for same device conflicts", func(t *testing.T) {
		dup := staging.New(ctx, deviceID, base)
		err := repo.PutStagingEntry(ctx, dup)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})

	t.Run("dismiss", func(t *testing.T) {
		endedAt := base.Add(time.Minute)
		got := gt.R1(repo.DismissStagingEntry(ctx, entry.ID, endedAt)).NoError(t)
		gt.Equal(t, got.Status, types.StagingStatusDismissed)
		gt.NotNil(t, got.EndedAt)
		gt.Equal(t, *got.EndedAt, endedAt)
	})

	t.Run("dismiss again conflicts", func(t *testing.T) {
		_, err := repo.DismissStagingEntry(ctx, entry.ID, base)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})

	t.Run("fresh entry allowed after dismissal", func(t *testing.T) {
		next := staging.New(ctx, deviceID, base)
		gt.NoError(t, repo.PutStagingEntry(ctx, next))

		entries := gt.R1(repo.GetStagingEntriesByDevice(ctx, deviceID)).NoError(t)
		gt.A(t, entries).Length(2)
	})

	t.Run("unknown entry not found", func(t *testing.T) {
		_, err := repo.GetStagingEntry(ctx, types.NewStagingID())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagNotFound))
	})
}

func TestPromoteStagingEntry(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := testContext(base)
	repo := repository.NewMemory()
	deviceID := types.DeviceID("vm-001")

	entry := staging.New(ctx, deviceID, base.Add(-90*time.Minute))
	gt.NoError(t, repo.PutStagingEntry(ctx, entry))

	inc := incident.New(ctx, deviceID, types.IncidentSourceDetector)
	inc.StagingID = entry.ID
	inc.SilenceStartedAt = entry.StartedAt

	created := gt.R1(repo.PromoteStagingEntry(ctx, entry.ID, inc)).NoError(t)
	gt.Equal(t, created.Status, types.IncidentStatusOpen)
	gt.Equal(t, created.StagingID, entry.ID)

	t.Run("entry marked promoted", func(t *testing.T) {
		got := gt.R1(repo.GetStagingEntry(ctx, entry.ID)).NoError(t)
		gt.Equal(t, got.Status, types.StagingStatusPromoted)
		gt.NotNil(t, got.EndedAt)
	})

	t.Run("incident stored", func(t *testing.T) {
		got := gt.R1(repo.GetIncident(ctx, created.ID)).NoError(t)
		gt.Equal(t, got.DeviceID, deviceID)
	})

	t.Run("re-promotion conflicts", func(t *testing.T) {
		again := incident.New(ctx, deviceID, types.IncidentSourceDetector)
		_, err := repo.PromoteStagingEntry(ctx, entry.ID, again)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))

		// No duplicate incident was created.
		count := gt.R1(repo.CountIncidents(ctx, nil)).NoError(t)
		gt.Equal(t, count, 1)
	})

	t.Run("promoting unknown entry not found", func(t *testing.T) {
		ghost := incident.New(ctx, deviceID, types.IncidentSourceDetector)
		_, err := repo.PromoteStagingEntry(ctx, types.NewStagingID(), ghost)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagNotFound))
	})
}

func TestIncidentTransitions(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := testContext(base)
	repo := repository.NewMemory()

	inc := incident.New(ctx, types.DeviceID("vm-001"), types.IncidentSourceManual)
	gt.NoError(t, repo.PutIncident(ctx, inc))

	t.Run("resolve before acknowledge conflicts", func(t *testing.T) {
		_, err := repo.ResolveIncident(ctx, inc.ID, base)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})

	t.Run("acknowledge", func(t *testing.T) {
		at := base.Add(5 * time.Minute)
		got := gt.R1(repo.AcknowledgeIncident(ctx, inc.ID, types.OperatorID("ops1"), at)).NoError(t)
		gt.Equal(t, got.Status, types.IncidentStatusAcknowledged)
		gt.Equal(t, got.AssignedOpsID, types.OperatorID("ops1"))
	})

	t.Run("acknowledge again conflicts", func(t *testing.T) {
		_, err := repo.AcknowledgeIncident(ctx, inc.ID, types.OperatorID("ops2"), base)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})

	t.Run("resolve", func(t *testing.T) {
		got := gt.R1(repo.ResolveIncident(ctx, inc.ID, base.Add(time.Hour))).NoError(t)
		gt.Equal(t, got.Status, types.IncidentStatusResolved)
		gt.NotNil(t, got.ResolvedAt)
	})
}

func TestPenaltyGuards(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := testContext(base)
	repo := repository.NewMemory()

	inc := incident.New(ctx, types.DeviceID("vm-001"), types.IncidentSourceManual)
	gt.NoError(t, repo.PutIncident(ctx, inc))

	t.Run("penalty for unknown incident not found", func(t *testing.T) {
		p := penalty.New(ctx, types.NewIncidentID(), types.DriverID("drv-100"), 5000, "JPY")
		err := repo.CreatePenalty(ctx, p)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagNotFound))
	})

	p := penalty.New(ctx, inc.ID, types.DriverID("drv-100"), 5000, "JPY")
	gt.NoError(t, repo.CreatePenalty(ctx, p))

	t.Run("create raises flag", func(t *testing.T) {
		got := gt.R1(repo.GetIncident(ctx, inc.ID)).NoError(t)
		gt.True(t, got.PenaltyFlag)
	})

	t.Run("second active penalty conflicts", func(t *testing.T) {
		dup := penalty.New(ctx, inc.ID, types.DriverID("drv-100"), 5000, "JPY")
		err := repo.CreatePenalty(ctx, dup)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})

	t.Run("approve clears flag atomically", func(t *testing.T) {
		gt.R1(repo.SubmitAppeal(ctx, p.ID, "contested", base)).NoError(t)
		got := gt.R1(repo.DecideAppeal(ctx, p.ID, types.AppealStatusApproved, "", base.Add(time.Minute))).NoError(t)
		gt.Equal(t, got.AppealStatus, types.AppealStatusApproved)
		gt.Equal(t, got.AppealNotes, "contested")
		gt.NotNil(t, got.DecidedAt)

		stored := gt.R1(repo.GetIncident(ctx, inc.ID)).NoError(t)
		gt.False(t, stored.PenaltyFlag)
	})

	t.Run("decision must be approved or rejected", func(t *testing.T) {
		_, err := repo.DecideAppeal(ctx, p.ID, types.AppealStatusPending, "", base)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagValidation))
	})
}

// TestPenaltyPagination verifies the pagination contract: for any offset and
// limit the returned count equals min(limit, total-offset) and hasMore is
// offset+returned < total.
func TestPenaltyPagination(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()

	const total = 7
	for i := 0; i < total; i++ {
		ctx := testContext(base.Add(time.Duration(i) * time.Hour))
		inc := incident.New(ctx, types.DeviceID("vm-001"), types.IncidentSourceManual)
		require.NoError(t, repo.PutIncident(ctx, inc))
		p := penalty.New(ctx, inc.ID, types.DriverID("drv-100"), 5000, "JPY")
		require.NoError(t, repo.CreatePenalty(ctx, p))
	}

	ctx := testContext(base.Add(24 * time.Hour))
	for offset := 0; offset <= total+1; offset++ {
		for limit := 1; limit <= total+1; limit++ {
			filter := penalty.ListFilter{Offset: offset, Limit: limit}

			count, err := repo.CountPenalties(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, total, count)

			items, err := repo.ListPenalties(ctx, filter)
			require.NoError(t, err)

			want := total - offset
			if want < 0 {
				want = 0
			}
			if limit < want {
				want = limit
			}
			assert.Len(t, items, want, "offset=%d limit=%d", offset, limit)

			result := penalty.NewListResult(items, count, offset, limit)
			assert.Equal(t, offset+len(items) < total, result.HasMore,
				"offset=%d limit=%d", offset, limit)
		}
	}
}

func TestPenaltySorting(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()

	statuses := []types.AppealStatus{
		types.AppealStatusNone,
		types.AppealStatusPending,
		types.AppealStatusRejected,
	}
	for i, st := range statuses {
		ctx := testContext(base.Add(time.Duration(i) * time.Hour))
		inc := incident.New(ctx, types.DeviceID("vm-001"), types.IncidentSourceManual)
		gt.NoError(t, repo.PutIncident(ctx, inc))
		p := penalty.New(ctx, inc.ID, types.DriverID("drv-100"), 5000, "JPY")
		gt.NoError(t, repo.CreatePenalty(ctx, p))

		if st != types.AppealStatusNone {
			gt.R1(repo.SubmitAppeal(ctx, p.ID, "contested", p.CreatedAt)).NoError(t)
		}
		if st == types.AppealStatusRejected {
			gt.R1(repo.DecideAppeal(ctx, p.ID, st, "", p.CreatedAt)).NoError(t)
		}
	}

	ctx := testContext(base.Add(24 * time.Hour))

	t.Run("default newest first", func(t *testing.T) {
		items := gt.R1(repo.ListPenalties(ctx, penalty.ListFilter{})).NoError(t)
		gt.A(t, items).Length(3)
		for i := 1; i < len(items); i++ {
			gt.True(t, !items[i-1].CreatedAt.Before(items[i].CreatedAt))
		}
	})

	t.Run("sort by appeal status", func(t *testing.T) {
		items := gt.R1(repo.ListPenalties(ctx, penalty.ListFilter{
			SortBy: penalty.SortByAppealStatus,
		})).NoError(t)
		gt.A(t, items).Length(3)
		for i := 1; i < len(items); i++ {
			gt.True(t, items[i-1].AppealStatus <= items[i].AppealStatus)
		}
	})
}
