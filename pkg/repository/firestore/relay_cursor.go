package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const relayCursorCollection = "relayCursors"

type relayCursorDoc struct {
	GuildID       string    `firestore:"guildid"`
	LastCreatedAt time.Time `firestore:"lastCreatedAt"`
}

type relayCursorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRelayCursorRepository(client *firestore.Client) *relayCursorRepository {
	return &relayCursorRepository{
		client: client,
	}
}

func (r *relayCursorRepository) doc(guildID string) *firestore.DocumentRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, relayCursorCollection)).Doc(guildID)
}

func (r *relayCursorRepository) Get(ctx context.Context, guildID string) (time.Time, error) {
	docSnap, err := r.doc(guildID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return time.Time{}, nil
		}
		return time.Time{}, goerr.Wrap(err, "failed to get relay cursor", goerr.V("guild_id", guildID))
	}

	var doc relayCursorDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to decode relay cursor", goerr.V("guild_id", guildID))
	}
	return doc.LastCreatedAt, nil
}

func (r *relayCursorRepository) Put(ctx context.Context, guildID string, lastCreatedAt time.Time) error {
	doc := &relayCursorDoc{
		GuildID:       guildID,
		LastCreatedAt: lastCreatedAt.UTC(),
	}
	if _, err := r.doc(guildID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put relay cursor", goerr.V("guild_id", guildID))
	}
	return nil
}
