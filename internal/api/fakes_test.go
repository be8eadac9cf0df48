package api

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dayplan/internal/auth"
	"dayplan/internal/crypt"
	"dayplan/internal/models"
	"dayplan/internal/store"
)

// In-memory stands-ins for the Mongo repositories, keyed the same way the
// real collections are.

type fakeUserStore struct {
	mu    sync.Mutex
	users []*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{}
}

func (f *fakeUserStore) Insert(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.EmailDigest == user.EmailDigest {
			return store.ErrDuplicate
		}
	}
	clone := *user
	f.users = append(f.users, &clone)
	return nil
}

func (f *fakeUserStore) FindByEmailDigest(ctx context.Context, digest string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.EmailDigest == digest {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserID == userID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindBySession(ctx context.Context, sessionID string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []*models.User
	for _, u := range f.users {
		if u.Session == sessionID {
			clone := *u
			matches = append(matches, &clone)
		}
	}
	return matches, nil
}

func (f *fakeUserStore) SetSession(ctx context.Context, userID, sessionID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserID == userID {
			u.PrevSession = u.Session
			u.Session = sessionID
			u.LatestSession = at.UTC()
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUserStore) ClearSession(ctx context.Context, sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cleared int64
	for _, u := range f.users {
		if u.Session == sessionID {
			u.Session = ""
			cleared++
		}
	}
	return cleared, nil
}

func (f *fakeUserStore) SetPasswordHash(ctx context.Context, userID, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserID == userID {
			u.PasswordHash = digest
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUserStore) Delete(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.UserID == userID {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// seed inserts a user record directly, bypassing the duplicate check.
func (f *fakeUserStore) seed(user models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, &user)
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeSessionStore) Find(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return 0, nil
	}
	delete(f.sessions, id)
	return 1, nil
}

func (f *fakeSessionStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := f.sessions[id]; ok {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSessionStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type fakeEventStore struct {
	mu      sync.Mutex
	records map[string]*models.EventRecord
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{records: make(map[string]*models.EventRecord)}
}

func (f *fakeEventStore) Append(ctx context.Context, userID string, entry models.EventEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		record = &models.EventRecord{UserID: userID}
		f.records[userID] = record
	}
	record.Events = append(record.Events, entry)
	return nil
}

func (f *fakeEventStore) Replace(ctx context.Context, userID string, entry models.EventEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[userID] = &models.EventRecord{UserID: userID, Events: []models.EventEntry{entry}}
	return nil
}

func (f *fakeEventStore) Find(ctx context.Context, userID string) (*models.EventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *record
	clone.Events = append([]models.EventEntry(nil), record.Events...)
	return &clone, nil
}

func (f *fakeEventStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[userID]; !ok {
		return 0, nil
	}
	delete(f.records, userID)
	return 1, nil
}

type fakeOAuthProvider struct {
	info        *auth.UserInfo
	exchangeErr error
	exchanged   []string
}

func (f *fakeOAuthProvider) LoginURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeOAuthProvider) Exchange(ctx context.Context, code string) (*auth.UserInfo, error) {
	f.exchanged = append(f.exchanged, code)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	if f.info == nil {
		return nil, fmt.Errorf("no user info configured")
	}
	return f.info, nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

// userFixture builds a user record the way the login flows store them, with
// the email encrypted and its lookup digest set.
func userFixture(t *testing.T, userID, email string) models.User {
	t.Helper()

	encrypted, err := sharedTestCipher(t).Encrypt(email)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	return models.User{
		DisplayName: "Test User",
		FirstName:   "Test",
		LastName:    "User",
		Email:       encrypted,
		EmailDigest: crypt.LookupDigest(email),
		UserID:      userID,
	}
}
