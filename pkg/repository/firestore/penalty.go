package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/penalty"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Firestore) CreatePenalty(ctx context.Context, p penalty.Penalty) error {
	if err := p.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid penalty", goerr.T(errs.TagValidation))
	}

	incidentRef := r.db.Collection(collectionIncidents).Doc(p.IncidentID.String())
	penaltyRef := r.db.Collection(collectionPenalties).Doc(p.ID.String())

	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(incidentRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("incident not found",
					goerr.TV(errs.IncidentIDKey, p.IncidentID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get incident", goerr.T(errs.TagDatabase))
		}

		// Any non-rejected penalty blocks a new assessment.
		query := r.db.Collection(collectionPenalties).
			Where("IncidentID", "==", p.IncidentID.String())
		iter := tx.Documents(query)
		defer iter.Stop()

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return goerr.Wrap(err, "failed to query penalties", goerr.T(errs.TagDatabase))
			}

			var existing penalty.Penalty
			if err := doc.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to convert data to penalty",
					goerr.T(errs.TagInternal))
			}
			if existing.IsActive() {
				return goerr.New("incident already has an active penalty",
					goerr.T(errs.TagConflict),
					goerr.TV(errs.IncidentIDKey, p.IncidentID),
					goerr.TV(errs.PenaltyIDKey, existing.ID))
			}
		}

		if err := tx.Update(incidentRef, []firestore.Update{
			{Path: "PenaltyFlag", Value: true},
			{Path: "UpdatedAt", Value: p.CreatedAt},
		}); err != nil {
			return goerr.Wrap(err, "failed to raise penalty flag", goerr.T(errs.TagDatabase))
		}

		return tx.Set(penaltyRef, p)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return err
		}
		return r.eb.Wrap(err, "failed to create penalty",
			goerr.TV(errs.PenaltyIDKey, p.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) GetPenalty(ctx context.Context, penaltyID types.PenaltyID) (*penalty.Penalty, error) {
	doc, err := r.db.Collection(collectionPenalties).Doc(penaltyID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("penalty not found",
				goerr.TV(errs.PenaltyIDKey, penaltyID),
				goerr.T(errs.TagNotFound))
		}
		return nil, r.eb.Wrap(err, "failed to get penalty",
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.T(errs.TagDatabase))
	}

	var p penalty.Penalty
	if err := doc.DataTo(&p); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to penalty",
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.T(errs.TagInternal))
	}
	return &p, nil
}

func (r *Firestore) GetPenaltiesByIncident(ctx context.Context, incidentID types.IncidentID) ([]*penalty.Penalty, error) {
	iter := r.db.Collection(collectionPenalties).
		Where("IncidentID", "==", incidentID.String()).
		Documents(ctx)
	defer iter.Stop()

	var penalties []*penalty.Penalty
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query penalties",
				goerr.TV(errs.IncidentIDKey, incidentID),
				goerr.T(errs.TagDatabase))
		}

		var p penalty.Penalty
		if err := doc.DataTo(&p); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to penalty",
				goerr.T(errs.TagInternal))
		}
		penalties = append(penalties, &p)
	}

	sort.Slice(penalties, func(i, j int) bool {
		return penalties[i].CreatedAt.Before(penalties[j].CreatedAt)
	})
	return penalties, nil
}

func (r *Firestore) SubmitAppeal(ctx context.Context, penaltyID types.PenaltyID, notes string, now time.Time) (*penalty.Penalty, error) {
	var submitted penalty.Penalty

	docRef := r.db.Collection(collectionPenalties).Doc(penaltyID.String())
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("penalty not found",
					goerr.TV(errs.PenaltyIDKey, penaltyID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get penalty", goerr.T(errs.TagDatabase))
		}

		var p penalty.Penalty
		if err := doc.DataTo(&p); err != nil {
			return goerr.Wrap(err, "failed to convert data to penalty",
				goerr.T(errs.TagInternal))
		}
		if p.AppealStatus != types.AppealStatusNone {
			return goerr.New("appeal already exists for penalty",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.PenaltyIDKey, penaltyID),
				goerr.TV(errs.StatusKey, p.AppealStatus.String()))
		}

		p.AppealStatus = types.AppealStatusPending
		p.AppealNotes = notes
		p.UpdatedAt = now
		submitted = p

		return tx.Set(docRef, p)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to submit appeal",
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.T(errs.TagDatabase))
	}
	return &submitted, nil
}

// DecideAppeal adjudicates a pending appeal. On approval the penalty and
// the originating incident's PenaltyFlag are written in one transaction; a
// crash cannot leave them inconsistent.
func (r *Firestore) DecideAppeal(ctx context.Context, penaltyID types.PenaltyID, decision types.AppealStatus, notes string, now time.Time) (*penalty.Penalty, error) {
	if decision != types.AppealStatusApproved && decision != types.AppealStatusRejected {
		return nil, r.eb.New("appeal decision must be approved or rejected",
			goerr.T(errs.TagValidation),
			goerr.TV(errs.StatusKey, decision.String()))
	}

	var decided penalty.Penalty

	docRef := r.db.Collection(collectionPenalties).Doc(penaltyID.String())
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("penalty not found",
					goerr.TV(errs.PenaltyIDKey, penaltyID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get penalty", goerr.T(errs.TagDatabase))
		}

		var p penalty.Penalty
		if err := doc.DataTo(&p); err != nil {
			return goerr.Wrap(err, "failed to convert data to penalty",
				goerr.T(errs.TagInternal))
		}
		if p.AppealStatus != types.AppealStatusPending {
			return goerr.New("appeal is not pending",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.PenaltyIDKey, penaltyID),
				goerr.TV(errs.StatusKey, p.AppealStatus.String()))
		}

		p.AppealStatus = decision
		if notes != "" {
			p.AppealNotes = notes
		}
		p.DecidedAt = &now
		p.UpdatedAt = now
		decided = p

		if decision == types.AppealStatusApproved {
			incidentRef := r.db.Collection(collectionIncidents).Doc(p.IncidentID.String())
			if err := tx.Update(incidentRef, []firestore.Update{
				{Path: "PenaltyFlag", Value: false},
				{Path: "UpdatedAt", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to clear penalty flag",
					goerr.TV(errs.IncidentIDKey, p.IncidentID),
					goerr.T(errs.TagDatabase))
			}
		}

		return tx.Set(docRef, p)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to decide appeal",
			goerr.TV(errs.PenaltyIDKey, penaltyID),
			goerr.T(errs.TagDatabase))
	}
	return &decided, nil
}

func (r *Firestore) ListPenalties(ctx context.Context, filter penalty.ListFilter) ([]*penalty.Penalty, error) {
	if err := filter.Validate(); err != nil {
		return nil, r.eb.Wrap(err, "invalid list filter", goerr.T(errs.TagValidation))
	}

	penalties, err := r.fetchPenalties(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch filter.SortBy {
	case penalty.SortByAppealStatus:
		sort.Slice(penalties, func(i, j int) bool {
			if penalties[i].AppealStatus != penalties[j].AppealStatus {
				return penalties[i].AppealStatus < penalties[j].AppealStatus
			}
			return penalties[i].CreatedAt.After(penalties[j].CreatedAt)
		})
	default:
		sort.Slice(penalties, func(i, j int) bool {
			return penalties[i].CreatedAt.After(penalties[j].CreatedAt)
		})
	}

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

func (r *Firestore) CountPenalties(ctx context.Context, filter penalty.ListFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, r.eb.Wrap(err, "invalid list filter", goerr.T(errs.TagValidation))
	}

	penalties, err := r.fetchPenalties(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(penalties), nil
}

func (r *Firestore) fetchPenalties(ctx context.Context, filter penalty.ListFilter) ([]*penalty.Penalty, error) {
	query := r.db.Collection(collectionPenalties).Query
	if filter.IncidentID != types.EmptyIncidentID {
		query = query.Where("IncidentID", "==", filter.IncidentID.String())
	}
	if filter.AppealStatus != "" {
		query = query.Where("AppealStatus", "==", filter.AppealStatus.String())
	}
	if !filter.Begin.IsZero() {
		query = query.Where("CreatedAt", ">=", filter.Begin)
	}
	if !filter.End.IsZero() {
		query = query.Where("CreatedAt", "<", filter.End)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var penalties []*penalty.Penalty
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query penalties",
				goerr.T(errs.TagDatabase))
		}

		var p penalty.Penalty
		if err := doc.DataTo(&p); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to penalty",
				goerr.T(errs.TagInternal))
		}
		penalties = append(penalties, &p)
	}
	return penalties, nil
}
