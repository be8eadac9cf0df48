package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"dayplan/internal/models"
)

const sessionsCollection = "sessions"

type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	_, _, err := r.store.Write(ctx, sessionsCollection, session)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.store.FindOne(ctx, sessionsCollection, bson.M{"_id": id}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.store.Delete(ctx, sessionsCollection, bson.M{"_id": id}, One)
}

// DeleteByIDs removes every listed session document in one call. Used by the
// duplicate-session purge.
func (r *SessionRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.store.Delete(ctx, sessionsCollection, bson.M{"_id": bson.M{"$in": ids}}, Many)
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	return r.store.Delete(ctx, sessionsCollection, bson.M{"userId": userID}, Many)
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.store.Delete(ctx, sessionsCollection, bson.M{"expiresAt": bson.M{"$lt": now.UTC()}}, Many)
}
