package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account record. Email is stored encrypted at rest; EmailDigest is
// the deterministic key used for lookups. UserID is the opaque token exposed
// to the client via the userId cookie, distinct from the database _id.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DisplayName    string             `bson:"displayName" json:"displayName"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Email          string             `bson:"email" json:"email"`
	EmailDigest    string             `bson:"emailDigest" json:"-"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	HD             string             `bson:"hd,omitempty" json:"hd,omitempty"`
	UserID         string             `bson:"userId" json:"-"`
	PasswordHash   string             `bson:"passwordHash,omitempty" json:"-"`
	Session        string             `bson:"session,omitempty" json:"-"`
	PrevSession    string             `bson:"prevSession,omitempty" json:"-"`
	LatestSession  time.Time          `bson:"latestSession" json:"-"`
}

// Profile is the subset of User returned to the client.
type Profile struct {
	DisplayName    string `json:"displayName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	HD             string `json:"hd,omitempty"`
}

func (u *User) Profile(email string) Profile {
	return Profile{
		DisplayName:    u.DisplayName,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          email,
		ProfilePicture: u.ProfilePicture,
		HD:             u.HD,
	}
}

// Session is the server-side session state referenced by the sid cookie.
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// EventRecord holds the ordered event list for one user.
type EventRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID string             `bson:"userId" json:"userId"`
	Events []EventEntry       `bson:"events" json:"events"`
}

type EventEntry struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"eventName" json:"eventName"`
	Date        string `bson:"eventDate" json:"eventDate"`
	Time        string `bson:"eventTime" json:"eventTime"`
	Location    string `bson:"eventLocation" json:"eventLocation"`
	Description string `bson:"eventDescription" json:"eventDescription"`
}
