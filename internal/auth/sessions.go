// Package auth provides session minting/validation and the Google OAuth
// provider.
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dayplan/internal/crypt"
	"dayplan/internal/models"
)

const (
	SessionCookieName = "sid"
	UserCookieName    = "userId"
	StateCookieName   = "oauth_state"

	sessionIDLength = 64
)

type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions mints server-side session records and the signed cookies that
// reference them. The signing secret comes from configuration so sessions
// survive process restarts.
type Sessions struct {
	secret    []byte
	cookieTTL time.Duration
	storeTTL  time.Duration
}

func NewSessions(secret string, cookieTTL, storeTTL time.Duration) *Sessions {
	return &Sessions{
		secret:    []byte(secret),
		cookieTTL: cookieTTL,
		storeTTL:  storeTTL,
	}
}

// Mint creates a session record (store-side expiry) and the signed cookie
// value (cookie-side expiry) referencing it.
func (s *Sessions) Mint(userID string) (*models.Session, string, error) {
	id, err := crypt.RandomToken(sessionIDLength, crypt.Alphanumeric)
	if err != nil {
		return nil, "", fmt.Errorf("generating session id: %w", err)
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.storeTTL),
	}

	claims := SessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cookieTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("signing session token: %w", err)
	}

	return session, signed, nil
}

// Parse validates a session cookie value and returns the session and user
// identifiers it references.
func (s *Sessions) Parse(tokenString string) (sessionID, userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parsing session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", "", fmt.Errorf("invalid session claims")
	}

	return claims.SessionID, claims.Subject, nil
}

func (s *Sessions) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// UserCookie exposes the opaque user identifier to the client. Not httpOnly:
// the frontend reads it to tag API requests.
func (s *Sessions) UserCookie(userID string) *http.Cookie {
	return &http.Cookie{
		Name:     UserCookieName,
		Value:    userID,
		Path:     "/",
		MaxAge:   int(s.cookieTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) ClearUserCookie() *http.Cookie {
	return &http.Cookie{
		Name:     UserCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}
}
