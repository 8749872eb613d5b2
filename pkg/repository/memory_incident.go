package repository

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

type incidentRecord struct {
	incident incident.Incident
}

func (r *Memory) PutIncident(ctx context.Context, inc incident.Incident) error {
	if err := inc.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid incident", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.incidents[inc.ID] = &incidentRecord{incident: inc}
	return nil
}

func (r *Memory) GetIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.incidents[incidentID]
	if !ok {
		return nil, r.eb.New("incident not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.IncidentIDKey, incidentID))
	}
	inc := rec.incident
	return &inc, nil
}

// PromoteStagingEntry flips the staging entry to promoted and stores the
// incident as one critical section, so two concurrent promotions of the
// same entry produce exactly one incident.
func (r *Memory) PromoteStagingEntry(ctx context.Context, stagingID types.StagingID, inc incident.Incident) (*incident.Incident, error) {
	if err := inc.Validate(); err != nil {
		return nil, r.eb.Wrap(err, "invalid incident", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.stagingEntries[stagingID]
	if !ok {
		return nil, r.eb.New("staging entry not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.StagingIDKey, stagingID))
	}
	if rec.entry.Status != types.StagingStatusOpen {
		return nil, r.eb.New("staging entry has already been closed",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.TV(errs.StatusKey, rec.entry.Status.String()))
	}

	rec.entry.Status = types.StagingStatusPromoted
	rec.entry.EndedAt = &inc.OpenedAt
	rec.entry.UpdatedAt = inc.OpenedAt

	r.incidents[inc.ID] = &incidentRecord{incident: inc}

	stored := inc
	return &stored, nil
}

func (r *Memory) AcknowledgeIncident(ctx context.Context, incidentID types.IncidentID, operatorID types.OperatorID, now time.Time) (*incident.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.incidents[incidentID]
	if !ok {
		return nil, r.eb.New("incident not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.IncidentIDKey, incidentID))
	}
	if rec.incident.Status != types.IncidentStatusOpen {
		return nil, r.eb.New("incident is not open",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.TV(errs.StatusKey, rec.incident.Status.String()))
	}

	rec.incident.Status = types.IncidentStatusAcknowledged
	rec.incident.AcknowledgedAt = &now
	rec.incident.UpdatedAt = now
	if operatorID != types.EmptyOperatorID {
		rec.incident.AssignedOpsID = operatorID
	}

	inc := rec.incident
	return &inc, nil
}

func (r *Memory) ResolveIncident(ctx context.Context, incidentID types.IncidentID, now time.Time) (*incident.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.incidents[incidentID]
	if !ok {
		return nil, r.eb.New("incident not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.IncidentIDKey, incidentID))
	}
	if rec.incident.Status != types.IncidentStatusAcknowledged {
		return nil, r.eb.New("incident is not acknowledged",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.TV(errs.StatusKey, rec.incident.Status.String()))
	}

	rec.incident.Status = types.IncidentStatusResolved
	rec.incident.ResolvedAt = &now
	rec.incident.UpdatedAt = now

	inc := rec.incident
	return &inc, nil
}

func incidentMatchesStatus(inc *incident.Incident, statuses []types.IncidentStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, status := range statuses {
		if inc.Status == status {
			return true
		}
	}
	return false
}

func (r *Memory) ListIncidents(ctx context.Context, statuses []types.IncidentStatus, offset, limit int) ([]*incident.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var incidents []*incident.Incident
	for _, rec := range r.incidents {
		if incidentMatchesStatus(&rec.incident, statuses) {
			inc := rec.incident
			incidents = append(incidents, &inc)
		}
	}

	// Newest first
	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].OpenedAt.After(incidents[j].OpenedAt)
	})

	if offset >= len(incidents) {
		return []*incident.Incident{}, nil
	}
	if offset > 0 {
		incidents = incidents[offset:]
	}
	if limit > 0 && limit < len(incidents) {
		incidents = incidents[:limit]
	}
	return incidents, nil
}

func (r *Memory) CountIncidents(ctx context.Context, statuses []types.IncidentStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.incidents {
		if incidentMatchesStatus(&rec.incident, statuses) {
			count++
		}
	}
	return count, nil
}
