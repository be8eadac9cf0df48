package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"dayplan/internal/models"
)

const eventsCollection = "events"

type EventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

// Append adds the entry to the user's event list, creating the record on
// first submit. Atomic $push, so concurrent submits never lose entries.
func (r *EventRepository) Append(ctx context.Context, userID string, entry models.EventEntry) error {
	return r.store.Upsert(ctx, eventsCollection,
		bson.M{"userId": userID},
		bson.M{"$push": bson.M{"events": entry}},
	)
}

// Replace overwrites the user's event list with the single entry.
func (r *EventRepository) Replace(ctx context.Context, userID string, entry models.EventEntry) error {
	return r.store.Upsert(ctx, eventsCollection,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"events": []models.EventEntry{entry}}},
	)
}

func (r *EventRepository) Find(ctx context.Context, userID string) (*models.EventRecord, error) {
	var record models.EventRecord
	if err := r.store.FindOne(ctx, eventsCollection, bson.M{"userId": userID}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *EventRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	return r.store.Delete(ctx, eventsCollection, bson.M{"userId": userID}, Many)
}
