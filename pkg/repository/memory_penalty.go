package repository

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

type penaltyRecord struct {
	penalty penalty.Penalty
}

// CreatePenalty stores the penalty and raises PenaltyFlag on the incident
// in one critical section. Conflict if the incident already has an active
// (non-rejected) penalty.
func (r *Memory) CreatePenalty(ctx context.Context, p penalty.Penalty) error {
	if err := p.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid penalty", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.incidents[p.IncidentID]
	if !ok {
		return r.eb.New("incident not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.IncidentIDKey, p.IncidentID))
	}

	for _, pr := range r.penalties {
		if pr.penalty.IncidentID == p.IncidentID && pr.penalty.IsActive() {
			return r.eb.New("incident already has an active penalty",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.IncidentIDKey, p.IncidentID),
				goerr.TV(errs.PenaltyIDKey, pr.penalty.ID))
		}
	}

	r.penalties[p.ID] = &penaltyRecord{penalty: p}
	rec.incident.PenaltyFlag = true
	rec.incident.UpdatedAt = p.CreatedAt
	return nil
}

func (r *Memory) GetPenalty(ctx context.Context, penaltyID types.PenaltyID) (*penalty.Penalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.penalties[penaltyID]
	if !ok {
		return nil, r.eb.New("penalty not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.PenaltyIDKey, penaltyID))
	}
	p := rec.penalty
	return &p, nil
}

func (r *Memory) GetPenaltiesByIncident(ctx context.Context, incidentID types.IncidentID) ([]*penalty.Penalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var penalties []*penalty.Penalty
	for _, rec := range r.penalties {
		if rec.penalty.IncidentID == incidentID {
			p := rec.penalty
			penalties = append(penalties, &p)
		}
	}

	sort.Slice(penalties, func(i, j int) bool {
		return penalties[i].CreatedAt.Before(penalties[j].CreatedAt)
	})
	return penalties, nil
}

func (r *Memory) SubmitAppeal(ctx context.Context, penaltyID types.PenaltyID, notes string, now time.Time) (*penalty.Penalty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.penalties[penaltyID]
	if !ok {
		return nil, r.eb.New("penalty not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.PenaltyIDKey, penaltyID))
	}
	if rec.penalty.AppealStatus != types.AppealStatusNone {
		return nil, r.eb.New("appeal already exists for penalty",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.TV(errs.StatusKey, rec.penalty.AppealStatus.String()))
	}

	rec.penalty.AppealStatus = types.AppealStatusPending
	rec.penalty.AppealNotes = notes
	rec.penalty.UpdatedAt = now

	p := rec.penalty
	return &p, nil
}

// DecideAppeal adjudicates a pending appeal. Approval also clears
// PenaltyFlag on the originating incident; both writes happen in the same
// critical section so the invariant "approved implies flag cleared" holds
// even under concurrent access.
func (r *Memory) DecideAppeal(ctx context.Context, penaltyID types.PenaltyID, decision types.AppealStatus, notes string, now time.Time) (*penalty.Penalty, error) {
	if decision != types.AppealStatusApproved && decision != types.AppealStatusRejected {
		return nil, r.eb.New("appeal decision must be approved or rejected",
			goerr.T(errs.TagValidation),
			goerr.TV(errs.StatusKey, decision.String()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.penalties[penaltyID]
	if !ok {
		return nil, r.eb.New("penalty not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.PenaltyIDKey, penaltyID))
	}
	if rec.penalty.AppealStatus != types.AppealStatusPending {
		return nil, r.eb.New("appeal is not pending",
			goerr.T(errs.TagConflict),
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.TV(errs.StatusKey, rec.penalty.AppealStatus.String()))
	}

	rec.penalty.AppealStatus = decision
	if notes != "" {
		rec.penalty.AppealNotes = notes
	}
	rec.penalty.DecidedAt = &now
	rec.penalty.UpdatedAt = now

	if decision == types.AppealStatusApproved {
		if inc, ok := r.incidents[rec.penalty.IncidentID]; ok {
			inc.incident.PenaltyFlag = false
			inc.incident.UpdatedAt = now
		}
	}

	p := rec.penalty
	return &p, nil
}

func sortPenalties(penalties []*penalty.Penalty, sortBy penalty.SortKey) {
	switch sortBy {
	case penalty.SortByAppealStatus:
		sort.Slice(penalties, func(i, j int) bool {
			if penalties[i].AppealStatus != penalties[j].AppealStatus {
				return penalties[i].AppealStatus < penalties[j].AppealStatus
			}
			return penalties[i].CreatedAt.After(penalties[j].CreatedAt)
		})
	default:
		// Newest first
		sort.Slice(penalties, func(i, j int) bool {
			return penalties[i].CreatedAt.After(penalties[j].CreatedAt)
		})
	}
}

func (r *Memory) ListPenalties(ctx context.Context, filter penalty.ListFilter) ([]*penalty.Penalty, error) {
	if err := filter.Validate(); err != nil {
		return nil, r.eb.Wrap(err, "invalid list filter", goerr.T(errs.TagValidation))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var penalties []*penalty.Penalty
	for _, rec := range r.penalties {
		if filter.Match(&rec.penalty) {
			p := rec.penalty
			penalties = append(penalties, &p)
		}
	}

	sortPenalties(penalties, filter.SortBy)

	if filter.Offset >= len(penalties) {
		return []*penalty.Penalty{}, nil
	}
	if filter.Offset > 0 {
		penalties = penalties[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(penalties) {
		penalties = penalties[:filter.Limit]
	}
	return penalties, nil
}

func (r *Memory) CountPenalties(ctx context.Context, filter penalty.ListFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, r.eb.Wrap(err, "invalid list filter", goerr.T(errs.TagValidation))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.penalties {
		if filter.Match(&rec.penalty) {
			count++
		}
	}
	return count, nil
}
