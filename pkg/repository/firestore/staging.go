package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/model/staging"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Firestore) PutStagingEntry(ctx context.Context, entry staging.Entry) error {
	if err := entry.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid staging entry", goerr.T(errs.TagValidation))
	}

	// The single-open-entry-per-device invariant is checked inside a
	// transaction so two detectors racing on the same device cannot both
	// insert an open entry.
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if entry.Status == types.StagingStatusOpen {
			query := r.db.Collection(collectionStagingEntries).
				Where("DeviceID", "==", entry.DeviceID.String()).
				Where("Status", "==", types.StagingStatusOpen.String())
			iter := tx.Documents(query)
			defer iter.Stop()

			for {
				doc, err := iter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to query open staging entries",
						goerr.T(errs.TagDatabase))
				}
				if doc.Ref.ID != entry.ID.String() {
					return goerr.New("device already has an open staging entry",
						goerr.T(errs.TagConflict),
						goerr.TV(errs.DeviceIDKey, entry.DeviceID),
						goerr.TV(errs.StagingIDKey, types.StagingID(doc.Ref.ID)))
				}
			}
		}

		return tx.Set(r.db.Collection(collectionStagingEntries).Doc(entry.ID.String()), entry)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagConflict) {
			return err
		}
		return r.eb.Wrap(err, "failed to put staging entry",
			goerr.TV(errs.StagingIDKey, entry.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) GetStagingEntry(ctx context.Context, stagingID types.StagingID) (*staging.Entry, error) {
	doc, err := r.db.Collection(collectionStagingEntries).Doc(stagingID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("staging entry not found",
				goerr.TV(errs.StagingIDKey, stagingID),
				goerr.T(errs.TagNotFound))
		}
		return nil, r.eb.Wrap(err, "failed to get staging entry",
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.T(errs.TagDatabase))
	}

	var entry staging.Entry
	if err := doc.DataTo(&entry); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to staging entry",
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.T(errs.TagInternal))
	}
	return &entry, nil
}

func (r *Firestore) GetOpenStagingEntry(ctx context.Context, deviceID types.DeviceID) (*staging.Entry, error) {
	iter := r.db.Collection(collectionStagingEntries).
		Where("DeviceID", "==", deviceID.String()).
		Where("Status", "==", types.StagingStatusOpen.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, nil
		}
		return nil, r.eb.Wrap(err, "failed to query open staging entry",
			goerr.TV(errs.DeviceIDKey, deviceID),
			goerr.T(errs.TagDatabase))
	}

	var entry staging.Entry
	if err := doc.DataTo(&entry); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to staging entry",
			goerr.TV(errs.DeviceIDKey, deviceID),
			goerr.T(errs.TagInternal))
	}
	return &entry, nil
}

func (r *Firestore) GetStagingEntriesByDevice(ctx context.Context, deviceID types.DeviceID) ([]*staging.Entry, error) {
	iter := r.db.Collection(collectionStagingEntries).
		Where("DeviceID", "==", deviceID.String()).
		Documents(ctx)
	defer iter.Stop()

	var entries []*staging.Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query staging entries",
				goerr.TV(errs.DeviceIDKey, deviceID),
				goerr.T(errs.TagDatabase))
		}

		var entry staging.Entry
		if err := doc.DataTo(&entry); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to staging entry",
				goerr.T(errs.TagInternal))
		}
		entries = append(entries, &entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *Firestore) DismissStagingEntry(ctx context.Context, stagingID types.StagingID, endedAt time.Time) (*staging.Entry, error) {
	var dismissed staging.Entry

	docRef := r.db.Collection(collectionStagingEntries).Doc(stagingID.String())
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("staging entry not found",
					goerr.TV(errs.StagingIDKey, stagingID),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get staging entry", goerr.T(errs.TagDatabase))
		}

		var entry staging.Entry
		if err := doc.DataTo(&entry); err != nil {
			return goerr.Wrap(err, "failed to convert data to staging entry",
				goerr.T(errs.TagInternal))
		}
		if entry.Status != types.StagingStatusOpen {
			return goerr.New("staging entry is not open",
				goerr.T(errs.TagConflict),
				goerr.TV(errs.StagingIDKey, stagingID),
				goerr.TV(errs.StatusKey, entry.Status.String()))
		}

		entry.Status = types.StagingStatusDismissed
		entry.EndedAt = &endedAt
		entry.UpdatedAt = endedAt
		dismissed = entry

		return tx.Set(docRef, entry)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) || goerr.HasTag(err, errs.TagConflict) {
			return nil, err
		}
		return nil, r.eb.Wrap(err, "failed to dismiss staging entry",
			goerr.TV(errs.StagingIDKey, stagingID),
			goerr.T(errs.TagDatabase))
	}
	return &dismissed, nil
}
