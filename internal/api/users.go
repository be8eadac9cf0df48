package api

import (
	"errors"
	"log/slog"
	"net/http"

	"dayplan/internal/auth"
	"dayplan/internal/crypt"
	"dayplan/internal/models"
	"dayplan/internal/store"
)

type UserHandler struct {
	users        UserStore
	sessionStore SessionStore
	events       EventStore
	sessions     *auth.Sessions
	cipher       *crypt.Cipher
}

func NewUserHandler(
	users UserStore,
	sessionStore SessionStore,
	events EventStore,
	sessions *auth.Sessions,
	cipher *crypt.Cipher,
) *UserHandler {
	return &UserHandler{
		users:        users,
		sessionStore: sessionStore,
		events:       events,
		sessions:     sessions,
		cipher:       cipher,
	}
}

type UserLookupRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

// POST /post/user responds with a single-element array so the client can
// treat the result like a query result set.
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req UserLookupRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := h.users.FindByUserID(r.Context(), req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	email, err := h.cipher.Decrypt(user.Email)
	if err != nil {
		slog.Error("error decrypting email", "error", err, "user", user.UserID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, []models.Profile{user.Profile(email)})
}

type SetPasswordRequest struct {
	UserID   string `json:"userId" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=128"`
}

// POST /post/password
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := h.users.FindByUserID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, "User not found")
			return
		}
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	if err := h.users.SetPasswordHash(r.Context(), req.UserID, crypt.HashPassword(req.Password)); err != nil {
		slog.Error("error setting password", "error", err, "user", req.UserID)
		internalError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Password updated")
}

type DeleteUserRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

// POST /post/delete removes the user together with their events and
// sessions. The user is looked up first; an unknown id deletes nothing.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := h.users.FindByUserID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, "User not found")
			return
		}
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	if _, err := h.users.Delete(r.Context(), req.UserID); err != nil {
		slog.Error("error deleting user", "error", err, "user", req.UserID)
		internalError(w)
		return
	}
	if _, err := h.events.DeleteByUserID(r.Context(), req.UserID); err != nil {
		slog.Error("error deleting user events", "error", err, "user", req.UserID)
	}
	if _, err := h.sessionStore.DeleteByUserID(r.Context(), req.UserID); err != nil {
		slog.Error("error deleting user sessions", "error", err, "user", req.UserID)
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	http.SetCookie(w, h.sessions.ClearUserCookie())

	writeMessage(w, http.StatusOK, "User deleted")
}
