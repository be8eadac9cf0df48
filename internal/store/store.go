// Package store is the document store gateway: one pooled Mongo client opened
// at startup, typed repositories layered on a small set of collection
// primitives.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// Scope selects how many documents a Delete may remove.
type Scope int

const (
	One Scope = iota
	Many
)

const (
	connectAttempts = 5
	connectBaseWait = time.Second
)

// Observer receives gateway operation timings. Implemented by the metrics
// collector; a nil observer disables recording.
type Observer interface {
	ObserveStoreOp(op string, d time.Duration)
}

type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	observe Observer
}

// Connect opens the pooled client, retrying the initial connection with
// exponential backoff before giving up. Later operations fail fast.
func Connect(ctx context.Context, uri, dbName string, observe Observer) (*Store, error) {
	var client *mongo.Client
	var err error

	for attempt := 0; attempt < connectAttempts; attempt++ {
		if attempt > 0 {
			wait := connectBaseWait << (attempt - 1)
			slog.Warn("retrying database connection", "attempt", attempt+1, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			continue
		}
		if err = client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			continue
		}
		return &Store{client: client, db: client.Database(dbName), observe: observe}, nil
	}

	return nil, fmt.Errorf("connecting to database after %d attempts: %w", connectAttempts, err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) record(op string, started time.Time) {
	if s.observe != nil {
		s.observe.ObserveStoreOp(op, time.Since(started))
	}
}

// Write inserts a single document and reports the generated id.
func (s *Store) Write(ctx context.Context, collection string, doc any) (string, bool, error) {
	defer s.record("write", time.Now())

	res, err := s.collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", false, ErrDuplicate
		}
		return "", false, fmt.Errorf("inserting into %s: %w", collection, err)
	}

	id := ""
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		id = oid.Hex()
	} else {
		id = fmt.Sprint(res.InsertedID)
	}
	return id, true, nil
}

// Modify applies an operator update ($set, $push, $unset, ...) to every
// document matching filter and returns the modified count.
func (s *Store) Modify(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	defer s.record("modify", time.Now())

	res, err := s.collection(collection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("updating %s: %w", collection, err)
	}
	return res.ModifiedCount, nil
}

// Upsert is Modify against a single document, inserting it when absent.
func (s *Store) Upsert(ctx context.Context, collection string, filter, update bson.M) error {
	defer s.record("upsert", time.Now())

	_, err := s.collection(collection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upserting into %s: %w", collection, err)
	}
	return nil
}

// Delete removes one or many documents matching filter.
func (s *Store) Delete(ctx context.Context, collection string, filter bson.M, scope Scope) (int64, error) {
	defer s.record("delete", time.Now())

	var res *mongo.DeleteResult
	var err error
	if scope == Many {
		res, err = s.collection(collection).DeleteMany(ctx, filter)
	} else {
		res, err = s.collection(collection).DeleteOne(ctx, filter)
	}
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

// Find decodes every document matching filter into results, which must be a
// pointer to a slice.
func (s *Store) Find(ctx context.Context, collection string, filter bson.M, results any) error {
	defer s.record("find", time.Now())

	cur, err := s.collection(collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, results); err != nil {
		return fmt.Errorf("decoding %s results: %w", collection, err)
	}
	return nil
}

// FindOne decodes the first document matching filter into result.
func (s *Store) FindOne(ctx context.Context, collection string, filter bson.M, result any) error {
	defer s.record("find", time.Now())

	err := s.collection(collection).FindOne(ctx, filter).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	return nil
}
