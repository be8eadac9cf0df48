package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"dayplan/internal/auth"
	"dayplan/internal/config"
	"dayplan/internal/models"
	"dayplan/internal/store"
)

type EventHandler struct {
	events    EventStore
	users     UserStore
	onSubmit  string
	sanitizer *bluemonday.Policy
}

func NewEventHandler(events EventStore, users UserStore, onSubmit string) *EventHandler {
	return &EventHandler{
		events:    events,
		users:     users,
		onSubmit:  onSubmit,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type EventValues struct {
	Name        string `json:"eventName" validate:"required,max=200"`
	Date        string `json:"eventDate" validate:"required,max=32"`
	Time        string `json:"eventTime" validate:"max=32"`
	Location    string `json:"eventLocation" validate:"max=200"`
	Description string `json:"eventDescription" validate:"max=2000"`
}

type SubmitEventRequest struct {
	UserID      string      `json:"userId" validate:"required,max=128"`
	EventValues EventValues `json:"eventValues" validate:"required"`
}

// POST /post/events
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
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

	entry := models.EventEntry{
		ID:          uuid.NewString(),
		Name:        h.sanitizer.Sanitize(req.EventValues.Name),
		Date:        h.sanitizer.Sanitize(req.EventValues.Date),
		Time:        h.sanitizer.Sanitize(req.EventValues.Time),
		Location:    h.sanitizer.Sanitize(req.EventValues.Location),
		Description: h.sanitizer.Sanitize(req.EventValues.Description),
	}

	var err error
	switch h.onSubmit {
	case config.SubmitReplace:
		err = h.events.Replace(r.Context(), req.UserID, entry)
	default:
		err = h.events.Append(r.Context(), req.UserID, entry)
	}
	if err != nil {
		slog.Error("error storing event", "error", err, "user", req.UserID)
		internalError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Event saved")
}

type eventQueryRequest struct {
	UserID string `json:"userId"`
}

// resolveUserID reads the target user id from the request body when one is
// posted, falling back to the userId cookie.
func (h *EventHandler) resolveUserID(r *http.Request) string {
	if r.Body != nil {
		var req eventQueryRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &req); err == nil && req.UserID != "" {
				return req.UserID
			}
		}
	}
	if cookie, err := r.Cookie(auth.UserCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GET|POST /get/events responds with the stored events array as-is.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r)
	if userID == "" {
		badRequest(w, "Missing user id")
		return
	}

	record, err := h.events.Find(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "No events found")
		return
	}
	if err != nil {
		slog.Error("error finding events", "error", err, "user", userID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, record.Events)
}

// POST /calendar/user/data groups the user's events by date. Users without
// an event record get an empty object rather than an error.
func (h *EventHandler) CalendarData(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r)
	if userID == "" {
		badRequest(w, "Missing user id")
		return
	}

	record, err := h.events.Find(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string][]models.EventEntry{})
		return
	}
	if err != nil {
		slog.Error("error finding events", "error", err, "user", userID)
		internalError(w)
		return
	}

	byDate := make(map[string][]models.EventEntry, len(record.Events))
	for _, entry := range record.Events {
		byDate[entry.Date] = append(byDate[entry.Date], entry)
	}

	writeJSON(w, http.StatusOK, byDate)
}
