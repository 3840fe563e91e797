package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
)

type Firestore struct {
	client          *firestore.Client
	scheduledAction *scheduledActionRepository
	relayCursor     *relayCursorRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections, mainly for tests sharing one database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.scheduledAction.collectionPrefix = prefix
		f.relayCursor.collectionPrefix = prefix
	}
}

// New connects to the given database. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:          client,
		scheduledAction: newScheduledActionRepository(client),
		relayCursor:     newRelayCursorRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) ScheduledAction() interfaces.ScheduledActionRepository {
	return f.scheduledAction
}

func (f *Firestore) RelayCursor() interfaces.RelayCursorRepository {
	return f.relayCursor
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName applies the optional collection prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
