package repository

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/staging"
	"github.com/vendops-lab/vigil/pkg/domain/types"

	"sync"
)

// Memory is an in-memory Repository for tests and single-process
// deployments. Every transition method performs its check-then-write under
// the write lock, so a losing racer observes the already-updated status and
// gets a conflict error.
type Memory struct {
	mu sync.RWMutex

	stagingEntries map[types.StagingID]*stagingRecord
	incidents      map[types.IncidentID]*incidentRecord
	penalties      map[types.PenaltyID]*penaltyRecord

	eb *goerr.Builder
}

var _ interfaces.Repository = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		stagingEntries: make(map[types.StagingID]*stagingRecord),
		incidents:      make(map[types.IncidentID]*incidentRecord),
		penalties:      make(map[types.PenaltyID]*penaltyRecord),
		eb:             goerr.NewBuilder(goerr.TV(errs.RepositoryKey, "memory")),
	}
}

type stagingRecord struct {
	entry staging.Entry
}

func (r *Memory) PutStagingEntry(ctx context.Context, entry staging.Entry) error {
	if err := entry.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid staging entry", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.Status == types.StagingStatusOpen {
		for _, rec := range r.stagingEntries {
			if rec.entry.DeviceID == entry.DeviceID &&
				rec.entry.Status == types.StagingStatusOpen &&
				rec.entry.ID != entry.ID {
				return r.eb.New("device already has an open staging entry",
					goerr.T(errs.TagConflict),
					goerr.TV(errs.DeviceIDKey, entry.DeviceID),
					goerr.TV(errs.StagingIDKey, rec.entry.ID))
			}
		}
	}

	r.stagingEntries[entry.ID] = &stagingRecord{entry: entry}
	return nil
}

func (r *Memory) GetStagingEntry(ctx context.Context, stagingID types.StagingID) (*staging.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.stagingEntries[stagingID]
	if !ok {
		return nil, r.eb.New("staging entry not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.StagingIDKey, stagingID))
	}
	entry := rec.entry
	return &entry, nil
}

func (r *Memory) GetOpenStagingEntry(ctx context.Context, deviceID types.DeviceID) (*staging.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.stagingEntries {
		if rec.entry.DeviceID == deviceID && rec.entry.Status == types.StagingStatusOpen {
			entry := rec.entry
			return &entry, nil
		}
	}
	return nil, nil
}

func (r *Memory) GetStagingEntriesByDevice(ctx context.Context, deviceID types.DeviceID) ([]*staging.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*staging.Entry
	for _, rec := range r.stagingEntries {
		if rec.entry.DeviceID == deviceID {
			entry := rec.entry
			entries = append(entries, &entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *Memory) DismissStagingEntry(ctx context.Context, stagingID types.StagingID, endedAt time.Time) (*staging.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.stagingEntries[stagingID]
	if !ok {
		return nil, r.eb.New("staging entry not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.StagingIDKey, stagingID))
	}
	if rec.entry.Status != types.StagingStatusOpen {
		return nil, r.eb.New("staging entry is not open",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.TV(errs.StatusKey, rec.entry.Status.String()))
	}

	rec.entry.Status = types.StagingStatusDismissed
	rec.entry.EndedAt = &endedAt
	rec.entry.UpdatedAt = endedAt

	entry := rec.entry
	return &entry, nil
}
