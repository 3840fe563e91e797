package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ScheduledActionCollection is the collection name without prefix
const ScheduledActionCollection = "scheduledActions"

// scheduledActionDoc is the persisted form. Field names are shared with
// records written by earlier deployments, so they must not change.
type scheduledActionDoc struct {
	ID            string    `firestore:"id"`
	Action        string    `firestore:"action"`
	PostLink      string    `firestore:"postLink"`
	EpochTime     int64     `firestore:"epochTime"`
	ScheduledBy   string    `firestore:"scheduledBy"`
	ScheduledByID string    `firestore:"scheduledById"`
	GuildID       string    `firestore:"guildid"`
	ChannelID     string    `firestore:"channelId"`
	CreatedAt     time.Time `firestore:"createdAt"`
	AttemptCount  int       `firestore:"attemptCount"`
	LastError     string    `firestore:"lastError"`
}

func toScheduledActionDoc(a *model.ScheduledAction) *scheduledActionDoc {
	return &scheduledActionDoc{
		ID:            a.ID.String(),
		Action:        a.Type.String(),
		PostLink:      a.PostLink,
		EpochTime:     a.DueAt.UnixMilli(),
		ScheduledBy:   a.ScheduledBy,
		ScheduledByID: a.ScheduledByID,
		GuildID:       a.GuildID,
		ChannelID:     a.ChannelID,
		CreatedAt:     a.CreatedAt,
		AttemptCount:  a.AttemptCount,
		LastError:     a.LastError,
	}
}

func (d *scheduledActionDoc) toModel(docID string) *model.ScheduledAction {
	id := d.ID
	if id == "" {
		id = docID
	}
	return &model.ScheduledAction{
		ID:            model.ScheduledActionID(id),
		Type:          types.ActionType(d.Action),
		PostLink:      d.PostLink,
		DueAt:         time.UnixMilli(d.EpochTime),
		GuildID:       d.GuildID,
		ScheduledBy:   d.ScheduledBy,
		ScheduledByID: d.ScheduledByID,
		ChannelID:     d.ChannelID,
		CreatedAt:     d.CreatedAt,
		AttemptCount:  d.AttemptCount,
		LastError:     d.LastError,
	}
}

type scheduledActionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newScheduledActionRepository(client *firestore.Client) *scheduledActionRepository {
	return &scheduledActionRepository{
		client: client,
	}
}

func (r *scheduledActionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, ScheduledActionCollection))
}

func newRecord(action *model.ScheduledAction) *model.ScheduledAction {
	created := *action
	created.ID = model.NewScheduledActionID()
	created.CreatedAt = time.Now().UTC()
	return &created
}

func (r *scheduledActionRepository) Create(ctx context.Context, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	created := newRecord(action)

	if _, err := r.collection().Doc(created.ID.String()).Create(ctx, toScheduledActionDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create scheduled action",
			goerr.V("id", created.ID),
			goerr.V("guild_id", created.GuildID))
	}

	return created, nil
}

func (r *scheduledActionRepository) Get(ctx context.Context, id model.ScheduledActionID) (*model.ScheduledAction, error) {
	docSnap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "scheduled action not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get scheduled action", goerr.V("id", id))
	}

	var doc scheduledActionDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode scheduled action", goerr.V("id", id))
	}
	return doc.toModel(docSnap.Ref.ID), nil
}

// Find sorts in process, so only equality filters plus one range on
// epochTime reach the index.
func (r *scheduledActionRepository) Find(ctx context.Context, filter interfaces.ScheduledActionFilter) ([]*model.ScheduledAction, error) {
	q := r.collection().Query
	if filter.GuildID != "" {
		q = q.Where("guildid", "==", filter.GuildID)
	}
	if filter.PostLink != "" {
		q = q.Where("postLink", "==", filter.PostLink)
	}
	if filter.Type != "" {
		q = q.Where("action", "==", filter.Type.String())
	}
	if !filter.DueBefore.IsZero() {
		q = q.Where("epochTime", "<=", filter.DueBefore.UnixMilli())
	}
	if !filter.DueAfter.IsZero() {
		q = q.Where("epochTime", ">=", filter.DueAfter.UnixMilli())
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	actions := make([]*model.ScheduledAction, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate scheduled actions",
				goerr.V("guild_id", filter.GuildID))
		}

		var doc scheduledActionDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode scheduled action", goerr.V("doc_id", docSnap.Ref.ID))
		}
		actions = append(actions, doc.toModel(docSnap.Ref.ID))
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].DueAt.Before(actions[j].DueAt)
	})
	return actions, nil
}

func (r *scheduledActionRepository) Delete(ctx context.Context, id model.ScheduledActionID) error {
	// Deleting a missing document succeeds in Firestore
	if _, err := r.collection().Doc(id.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete scheduled action", goerr.V("id", id))
	}
	return nil
}

func (r *scheduledActionRepository) Replace(ctx context.Context, oldID model.ScheduledActionID, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	created := newRecord(action)
	oldRef := r.collection().Doc(oldID.String())
	newRef := r.collection().Doc(created.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(oldRef); err != nil {
			return goerr.Wrap(err, "failed to delete replaced action")
		}
		if err := tx.Create(newRef, toScheduledActionDoc(created)); err != nil {
			return goerr.Wrap(err, "failed to create replacing action")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to replace scheduled action",
			goerr.V("old_id", oldID),
			goerr.V("new_id", created.ID))
	}

	return created, nil
}

func (r *scheduledActionRepository) RecordFailure(ctx context.Context, id model.ScheduledActionID, message string) (*model.ScheduledAction, error) {
	ref := r.collection().Doc(id.String())

	var updated *model.ScheduledAction
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "scheduled action not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get scheduled action")
		}

		var doc scheduledActionDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode scheduled action")
		}
		doc.AttemptCount++
		doc.LastError = message

		if err := tx.Update(ref, []firestore.Update{
			{Path: "attemptCount", Value: doc.AttemptCount},
			{Path: "lastError", Value: doc.LastError},
		}); err != nil {
			return goerr.Wrap(err, "failed to update scheduled action")
		}

		updated = doc.toModel(docSnap.Ref.ID)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record failure", goerr.V("id", id))
	}

	return updated, nil
}
