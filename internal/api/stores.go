package api

import (
	"context"
	"time"

	"dayplan/internal/auth"
	"dayplan/internal/models"
)

// The store interfaces the handlers depend on. Satisfied by the Mongo
// repositories in internal/store and by in-memory fakes in tests.

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmailDigest(ctx context.Context, digest string) (*models.User, error)
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	FindBySession(ctx context.Context, sessionID string) ([]*models.User, error)
	SetSession(ctx context.Context, userID, sessionID string, at time.Time) error
	ClearSession(ctx context.Context, sessionID string) (int64, error)
	SetPasswordHash(ctx context.Context, userID, digest string) error
	Delete(ctx context.Context, userID string) (int64, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

type EventStore interface {
	Append(ctx context.Context, userID string, entry models.EventEntry) error
	Replace(ctx context.Context, userID string, entry models.EventEntry) error
	Find(ctx context.Context, userID string) (*models.EventRecord, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// OAuthProvider is the redirect+callback contract with the identity provider.
type OAuthProvider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.UserInfo, error)
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
