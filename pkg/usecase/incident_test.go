package usecase_test

import (
	"context"
	"sync"
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

func TestIncidentLifecycle(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), fixedClock(base))
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)
	gt.Equal(t, inc.Status, types.IncidentStatusOpen)
	gt.Equal(t, inc.Source, types.IncidentSourceManual)
	gt.Equal(t, inc.OpenedAt, base)

	t.Run("acknowledge from open", func(t *testing.T) {
		ackCtx := clock.With(context.Background(), fixedClock(base.Add(5*time.Minute)))
		got := gt.R1(uc.AcknowledgeIncident(ackCtx, inc.ID, types.OperatorID("ops1"))).NoError(t)
		gt.Equal(t, got.Status, types.IncidentStatusAcknowledged)
		gt.Equal(t, got.AssignedOpsID, types.OperatorID("ops1"))
		gt.NotNil(t, got.AcknowledgedAt)
		gt.Equal(t, *got.AcknowledgedAt, base.Add(5*time.Minute))
	})

	t.Run("second acknowledge conflicts and keeps assignee", func(t *testing.T) {
		_, err := uc.AcknowledgeIncident(ctx, inc.ID, types.OperatorID("ops2"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))

		got := gt.R1(uc.GetIncident(ctx, inc.ID)).NoError(t)
		gt.Equal(t, got.AssignedOpsID, types.OperatorID("ops1"))
		gt.Equal(t, got.Status, types.IncidentStatusAcknowledged)
	})

	t.Run("resolve from acknowledged", func(t *testing.T) {
		resCtx := clock.With(context.Background(), fixedClock(base.Add(time.Hour)))
		got := gt.R1(uc.ResolveIncident(resCtx, inc.ID)).NoError(t)
		gt.Equal(t, got.Status, types.IncidentStatusResolved)
		gt.NotNil(t, got.ResolvedAt)
	})

	t.Run("resolve is terminal", func(t *testing.T) {
		_, err := uc.ResolveIncident(ctx, inc.ID)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))

		_, err = uc.AcknowledgeIncident(ctx, inc.ID, types.OperatorID("ops3"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagConflict))
	})
}

func TestResolveRequiresAcknowledgement(t *testing.T) {
	ctx := clock.With(context.Background(), fixedClock(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)))
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)

	_, err := uc.ResolveIncident(ctx, inc.ID)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagConflict))
}

func TestAcknowledgeKeepsAssignmentWhenOperatorEmpty(t *testing.T) {
	ctx := clock.With(context.Background(), fixedClock(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)))
	repo := repository.NewMemory()
	uc := usecase.New(usecase.WithRepository(repo))

	inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)

	// Pre-assign an owner, then acknowledge without naming one.
	stored := gt.R1(repo.GetIncident(ctx, inc.ID)).NoError(t)
	stored.AssignedOpsID = types.OperatorID("ops0")
	gt.NoError(t, repo.PutIncident(ctx, *stored))

	got := gt.R1(uc.AcknowledgeIncident(ctx, inc.ID, types.EmptyOperatorID)).NoError(t)
	gt.Equal(t, got.AssignedOpsID, types.OperatorID("ops0"))
}

func TestConcurrentAcknowledgeHasOneWinner(t *testing.T) {
	ctx := clock.With(context.Background(), fixedClock(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)))
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := uc.AcknowledgeIncident(ctx, inc.ID, types.OperatorID("ops1"))
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)

	successes := 0
	conflicts := 0
	for err := range errCh {
		if err == nil {
			successes++
		} else if goerr.HasTag(err, errs.TagConflict) {
			conflicts++
		}
	}
	gt.Equal(t, successes, 1)
	gt.Equal(t, conflicts, workers-1)
}

func TestGetIncidentNotFound(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	_, err := uc.GetIncident(ctx, types.NewIncidentID())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagNotFound))
}

func TestListIncidents(t *testing.T) {
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	uc := usecase.New(usecase.WithRepository(repository.NewMemory()))

	var ids []types.IncidentID
	for i := 0; i < 5; i++ {
		ctx := clock.With(context.Background(), fixedClock(base.Add(time.Duration(i)*time.Minute)))
		inc := gt.R1(uc.ReportIncident(ctx, types.DeviceID("vm-001"))).NoError(t)
		ids = append(ids, inc.ID)
	}

	ctx := clock.With(context.Background(), fixedClock(base.Add(time.Hour)))
	gt.R1(uc.AcknowledgeIncident(ctx, ids[0], types.OperatorID("ops1"))).NoError(t)

	t.Run("all, newest first", func(t *testing.T) {
		result := gt.R1(uc.ListIncidents(ctx, nil, 0, 0)).NoError(t)
		gt.Equal(t, result.Total, 5)
		gt.A(t, result.Items).Length(5)
		gt.Equal(t, result.Items[0].ID, ids[4])
		gt.False(t, result.HasMore)
	})

	t.Run("status filter", func(t *testing.T) {
		result := gt.R1(uc.ListIncidents(ctx, []types.IncidentStatus{types.IncidentStatusAcknowledged}, 0, 0)).NoError(t)
		gt.Equal(t, result.Total, 1)
		gt.A(t, result.Items).Length(1)
		gt.Equal(t, result.Items[0].ID, ids[0])
	})

	t.Run("pagination", func(t *testing.T) {
		result := gt.R1(uc.ListIncidents(ctx, nil, 2, 2)).NoError(t)
		gt.Equal(t, result.Total, 5)
		gt.A(t, result.Items).Length(2)
		gt.True(t, result.HasMore)

		last := gt.R1(uc.ListIncidents(ctx, nil, 4, 2)).NoError(t)
		gt.A(t, last.Items).Length(1)
		gt.False(t, last.HasMore)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := uc.ListIncidents(ctx, []types.IncidentStatus{"bogus"}, 0, 0)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagValidation))
	})

	t.Run("negative offset rejected", func(t *testing.T) {
		_, err := uc.ListIncidents(ctx, nil, -1, 0)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagValidation))
	})
}
