package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/incident"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Firestore) PutIncident(ctx context.Context, inc incident.Incident) error {
	if err := inc.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid incident", goerr.T(errs.TagValidation))
	}

	_, err := r.db.Collection(collectionIncidents).Doc(inc.ID.String()).Set(ctx, inc)
	if err != nil {
		return r.eb.Wrap(err, "failed to put incident",
			goerr.TV(errs.IncidentIDKey, inc.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) GetIncident(ctx context.Context, incidentID types.IncidentID) (*incident.Incident, error) {
	doc, err := r.db.Collection(collectionIncidents).Doc(incidentID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("incident not found",
				goerr.TV(errs.IncidentIDKey, incidentID),
				goerr.T(errs.TagNotFound))
		}
		return nil, r.eb.Wrap(err, "failed to get incident",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.T(errs.TagDatabase))
	}

	var inc incident.Incident
	if err := doc.DataTo(&inc); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to incident",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.T(errs.TagInternal))
	}
	return &inc, nil
}

// PromoteStagingEntry marks the staging entry promoted and creates the
// incident in one transaction, so a concurrent promotion or dismissal of
// the same entry loses with a conflict.
func (r *Firestore) PromoteStagingEntry(ctx context.Context, stagingID types.StagingID, inc incident.Incident) (*incident.Incident, error) {
	if err := inc.Validate(); err != nil {
		return nil, r.eb.Wrap(err, "invalid incident", goerr.T(errs.TagValidation))
	}

	stagingRef := r.db.Collection(collectionStagingEntries).Doc(stagingID.String())
	incidentRef := r.db.Collection(collectionIncidents).Doc(inc.ID.String())

	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(stagingRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("staging entry not found",
					goerr.TV(errs.StagingIDKey, stagingID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get staging entry", goerr.T(errs.TagDatabase))
		}

		var entry stagingSnapshot
		if err := doc.DataTo(&entry); err != nil {
			return goerr.Wrap(err, "failed to convert data to staging entry",
				goerr.T(errs.TagInternal))
		}
		if entry.Status != types.StagingStatusOpen {
			return goerr.New("staging entry has already been closed",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.StagingIDKey, stagingID),
				goerr.TV(errs.StatusKey, entry.Status.String()))
		}

		if err := tx.Update(stagingRef, []firestore.Update{
			{Path: "Status", Value: types.StagingStatusPromoted.String()},
			{Path: "EndedAt", Value: inc.OpenedAt},
			{Path: "UpdatedAt", Value: inc.OpenedAt},
		}); err != nil {
			return goerr.Wrap(err, "failed to mark staging entry promoted",
				goerr.T(errs.TagDatabase))
		}

		return tx.Set(incidentRef, inc)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to promote staging entry",
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.T(errs.TagDatabase))
	}

	stored := inc
	return &stored, nil
}

// stagingSnapshot is the subset of staging entry fields read inside
// transactions.
type stagingSnapshot struct {
	Status types.StagingStatus
}

func (r *Firestore) AcknowledgeIncident(ctx context.Context, incidentID types.IncidentID, operatorID types.OperatorID, now time.Time) (*incident.Incident, error) {
	var acked incident.Incident

	docRef := r.db.Collection(collectionIncidents).Doc(incidentID.String())
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("incident not found",
					goerr.TV(errs.IncidentIDKey, incidentID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get incident", goerr.T(errs.TagDatabase))
		}

		var inc incident.Incident
		if err := doc.DataTo(&inc); err != nil {
			return goerr.Wrap(err, "failed to convert data to incident",
				goerr.T(errs.TagInternal))
		}
		if inc.Status != types.IncidentStatusOpen {
			return goerr.New("incident is not open",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.IncidentIDKey, incidentID),
				goerr.TV(errs.StatusKey, inc.Status.String()))
		}

		inc.Status = types.IncidentStatusAcknowledged
		inc.AcknowledgedAt = &now
		inc.UpdatedAt = now
		if operatorID != types.EmptyOperatorID {
			inc.AssignedOpsID = operatorID
		}
		acked = inc

		return tx.Set(docRef, inc)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to acknowledge incident",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.T(errs.TagDatabase))
	}
	return &acked, nil
}

func (r *Firestore) ResolveIncident(ctx context.Context, incidentID types.IncidentID, now time.Time) (*incident.Incident, error) {
	var resolved incident.Incident

	docRef := r.db.Collection(collectionIncidents).Doc(incidentID.String())
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("incident not found",
					goerr.TV(errs.IncidentIDKey, incidentID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get incident", goerr.T(errs.TagDatabase))
		}

		var inc incident.Incident
		if err := doc.DataTo(&inc); err != nil {
			return goerr.Wrap(err, "failed to convert data to incident",
				goerr.T(errs.TagInternal))
		}
		if inc.Status != types.IncidentStatusAcknowledged {
			return goerr.New("incident is not acknowledged",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.IncidentIDKey, incidentID),
				goerr.TV(errs.StatusKey, inc.Status.String()))
		}

		inc.Status = types.IncidentStatusResolved
		inc.ResolvedAt = &now
		inc.UpdatedAt = now
		resolved = inc

		return tx.Set(docRef, inc)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to resolve incident",
			goerr.TV(errs.IncidentIDKey, incidentID),
			goerr.T(errs.TagDatabase))
	}
	return &resolved, nil
}

func (r *Firestore) ListIncidents(ctx context.Context, statuses []types.IncidentStatus, offset, limit int) ([]*incident.Incident, error) {
	incidents, err := r.fetchIncidents(ctx, statuses)
	if err != nil {
		return nil, err
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

func (r *Firestore) CountIncidents(ctx context.Context, statuses []types.IncidentStatus) (int, error) {
	incidents, err := r.fetchIncidents(ctx, statuses)
	if err != nil {
		return 0, err
	}
	return len(incidents), nil
}

func (r *Firestore) fetchIncidents(ctx context.Context, statuses []types.IncidentStatus) ([]*incident.Incident, error) {
	query := r.db.Collection(collectionIncidents).Query
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, s.String())
		}
		query = query.Where("Status", "in", values)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var incidents []*incident.Incident
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query incidents",
				goerr.T(errs.TagDatabase))
		}

		var inc incident.Incident
		if err := doc.DataTo(&inc); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to incident",
				goerr.T(errs.TagInternal))
		}
		incidents = append(incidents, &inc)
	}
	return incidents, nil
}
