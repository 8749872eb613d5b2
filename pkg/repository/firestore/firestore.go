package firestore

import (
	"cloud.google.com/go/firestore"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
)

// Firestore is the production Repository. Conditional transitions run in
// firestore transactions so the check and the write commit together.
type Firestore struct {
	db *firestore.Client
	eb *goerr.Builder
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	db, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.T(errs.TagDatabase))
	}

	return &Firestore{
		db: db,
		eb: goerr.NewBuilder(
			goerr.TV(errs.RepositoryKey, "firestore"),
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		),
	}, nil
}

func (r *Firestore) Close() error {
	return r.db.Close()
}

const (
	collectionStagingEntries = "staging_entries"
	collectionIncidents      = "incidents"
	collectionPenalties      = "penalties"
)
