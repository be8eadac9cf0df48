package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dayplan/internal/auth"
	"dayplan/internal/crypt"
	"dayplan/internal/models"
	"dayplan/internal/store"
)

const (
	userIDTokenLength = 64
	stateTokenLength  = 32
)

type AuthHandler struct {
	users        UserStore
	sessionStore SessionStore
	sessions     *auth.Sessions
	oauth        OAuthProvider
	cipher       *crypt.Cipher
	clientOrigin string
}

func NewAuthHandler(
	users UserStore,
	sessionStore SessionStore,
	sessions *auth.Sessions,
	oauth OAuthProvider,
	cipher *crypt.Cipher,
	clientOrigin string,
) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessionStore: sessionStore,
		sessions:     sessions,
		oauth:        oauth,
		cipher:       cipher,
		clientOrigin: clientOrigin,
	}
}

// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := crypt.RandomToken(stateTokenLength, crypt.Alphanumeric)
	if err != nil {
		slog.Error("error generating oauth state", "error", err)
		internalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.LoginURL(state), http.StatusTemporaryRedirect)
}

// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(auth.StateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		badRequest(w, "Invalid state parameter")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		badRequest(w, "Missing authorization code")
		return
	}

	info, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth code exchange failed", "error", err)
		upstreamError(w, "Authentication with provider failed")
		return
	}

	user, err := h.findOrCreateUser(r.Context(), info)
	if err != nil {
		slog.Error("error reconciling oauth user", "error", err)
		internalError(w)
		return
	}

	if err := h.startSession(r.Context(), w, user.UserID); err != nil {
		slog.Error("error starting session", "error", err, "user", user.UserID)
		internalError(w)
		return
	}

	http.Redirect(w, r, h.clientOrigin, http.StatusFound)
}

// findOrCreateUser looks the user up by email; repeat logins update the
// existing record, they never duplicate it.
func (h *AuthHandler) findOrCreateUser(ctx context.Context, info *auth.UserInfo) (*models.User, error) {
	digest := crypt.LookupDigest(info.Email)

	user, err := h.users.FindByEmailDigest(ctx, digest)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	encrypted, err := h.cipher.Encrypt(info.Email)
	if err != nil {
		return nil, err
	}

	userID, err := crypt.RandomToken(userIDTokenLength, crypt.Alphanumeric)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		DisplayName:    info.Name,
		FirstName:      info.GivenName,
		LastName:       info.FamilyName,
		Email:          encrypted,
		EmailDigest:    digest,
		ProfilePicture: info.Picture,
		HD:             info.HD,
		UserID:         userID,
		LatestSession:  time.Now().UTC(),
	}
	if err := h.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GET /auth/logout
func (h *AuthHandler) GoogleLogout(w http.ResponseWriter, r *http.Request) {
	h.destroySession(w, r)
	http.Redirect(w, r, h.clientOrigin, http.StatusFound)
}

// GET /login/guest
func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	userID, err := crypt.RandomToken(userIDTokenLength, crypt.Alphanumeric)
	if err != nil {
		slog.Error("error generating guest user id", "error", err)
		internalError(w)
		return
	}

	encrypted, err := h.cipher.Encrypt("guest@localhost")
	if err != nil {
		slog.Error("error encrypting guest email", "error", err)
		internalError(w)
		return
	}

	guest := &models.User{
		DisplayName:    "Guest",
		FirstName:      "Guest",
		LastName:       "Guest",
		Email:          encrypted,
		EmailDigest:    crypt.LookupDigest("guest+" + userID + "@localhost"),
		ProfilePicture: "https://via.placeholder.com/150",
		HD:             "localhost",
		UserID:         userID,
		LatestSession:  time.Now().UTC(),
	}
	if err := h.users.Insert(r.Context(), guest); err != nil {
		slog.Error("error creating guest user", "error", err)
		internalError(w)
		return
	}

	if err := h.startSession(r.Context(), w, userID); err != nil {
		slog.Error("error starting guest session", "error", err)
		internalError(w)
		return
	}

	http.Redirect(w, r, h.clientOrigin, http.StatusFound)
}

// POST /login/user
type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	Register bool   `json:"register,omitempty"`
}

func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req PasswordLoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	digest := crypt.LookupDigest(email)

	user, err := h.users.FindByEmailDigest(r.Context(), digest)
	if errors.Is(err, store.ErrNotFound) {
		if req.Register {
			h.registerPasswordUser(w, r, email, req.Password)
			return
		}
		notFound(w, "User not found")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	if user.PasswordHash == "" || !crypt.ComparePassword(req.Password, user.PasswordHash) {
		unauthorized(w, "Invalid credentials")
		return
	}

	if err := h.startSession(r.Context(), w, user.UserID); err != nil {
		slog.Error("error starting session", "error", err, "user", user.UserID)
		internalError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Logged in")
}

// registerPasswordUser creates a user record on first password registration
// for an email.
func (h *AuthHandler) registerPasswordUser(w http.ResponseWriter, r *http.Request, email, password string) {
	encrypted, err := h.cipher.Encrypt(email)
	if err != nil {
		slog.Error("error encrypting email", "error", err)
		internalError(w)
		return
	}

	userID, err := crypt.RandomToken(userIDTokenLength, crypt.Alphanumeric)
	if err != nil {
		slog.Error("error generating user id", "error", err)
		internalError(w)
		return
	}

	displayName := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		displayName = email[:at]
	}

	user := &models.User{
		DisplayName:   displayName,
		Email:         encrypted,
		EmailDigest:   crypt.LookupDigest(email),
		UserID:        userID,
		PasswordHash:  crypt.HashPassword(password),
		LatestSession: time.Now().UTC(),
	}
	if err := h.users.Insert(r.Context(), user); err != nil {
		slog.Error("error creating user", "error", err)
		internalError(w)
		return
	}

	if err := h.startSession(r.Context(), w, userID); err != nil {
		slog.Error("error starting session", "error", err, "user", userID)
		internalError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Registered")
}

// GET /login falls through the identity middleware only when no session
// matched.
func (h *AuthHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	unauthorized(w, "Not logged in")
}

// POST /credentials/logout
func (h *AuthHandler) CredentialsLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(auth.SessionCookieName); err != nil {
		unauthorized(w, "No active session")
		return
	}

	h.destroySession(w, r)
	writeMessage(w, http.StatusOK, "Logged out")
}

// startSession mints a session, persists it, rotates the user's session
// reference, and sets both cookies.
func (h *AuthHandler) startSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	session, signed, err := h.sessions.Mint(userID)
	if err != nil {
		return err
	}
	if err := h.sessionStore.Create(ctx, session); err != nil {
		return err
	}
	if err := h.users.SetSession(ctx, userID, session.ID, time.Now()); err != nil {
		return err
	}

	http.SetCookie(w, h.sessions.Cookie(signed))
	http.SetCookie(w, h.sessions.UserCookie(userID))
	return nil
}

// destroySession deletes the session document referenced by the sid cookie,
// clears the session reference on the owning user, and expires both cookies.
func (h *AuthHandler) destroySession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if sid, _, err := h.sessions.Parse(cookie.Value); err == nil {
			if _, err := h.sessionStore.Delete(r.Context(), sid); err != nil {
				slog.Error("error deleting session", "error", err)
			}
			if _, err := h.users.ClearSession(r.Context(), sid); err != nil {
				slog.Error("error clearing session reference", "error", err)
			}
		}
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	http.SetCookie(w, h.sessions.ClearUserCookie())
}
