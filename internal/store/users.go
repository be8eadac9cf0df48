package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"dayplan/internal/models"
)

const usersCollection = "users"

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	_, _, err := r.store.Write(ctx, usersCollection, user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmailDigest(ctx context.Context, digest string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"emailDigest": digest})
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// FindBySession returns every user referencing the session id. More than one
// result is a consistency fault the caller is expected to purge.
func (r *UserRepository) FindBySession(ctx context.Context, sessionID string) ([]*models.User, error) {
	var users []*models.User
	if err := r.store.Find(ctx, usersCollection, bson.M{"session": sessionID}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetSession records a fresh login: the current session id rotates into
// prevSession and the last-active timestamp advances. A single atomic $set,
// no read-modify-write.
func (r *UserRepository) SetSession(ctx context.Context, userID, sessionID string, at time.Time) error {
	user, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	prev := user.Session
	if prev == "" {
		prev = sessionID
	}

	modified, err := r.store.Modify(ctx, usersCollection,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{
			"session":       sessionID,
			"prevSession":   prev,
			"latestSession": at.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if modified == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSession removes the session reference from every user carrying it.
func (r *UserRepository) ClearSession(ctx context.Context, sessionID string) (int64, error) {
	return r.store.Modify(ctx, usersCollection,
		bson.M{"session": sessionID},
		bson.M{"$unset": bson.M{"session": ""}},
	)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, userID, digest string) error {
	modified, err := r.store.Modify(ctx, usersCollection,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"passwordHash": digest}},
	)
	if err != nil {
		return err
	}
	if modified == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) (int64, error) {
	return r.store.Delete(ctx, usersCollection, bson.M{"userId": userID}, One)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.store.FindOne(ctx, usersCollection, filter, &user)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}
