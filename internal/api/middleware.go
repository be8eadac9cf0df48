package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dayplan/internal/auth"
	"dayplan/internal/crypt"
	"dayplan/internal/metrics"
	"dayplan/internal/models"
	"dayplan/internal/store"
)

// IdentityMiddleware resolves the session cookie against stored user records.
// Sessions are exclusive per identity: a session id referenced by more than
// one user is a consistency fault and every implicated session is purged.
type IdentityMiddleware struct {
	users        UserStore
	sessionStore SessionStore
	sessions     *auth.Sessions
	cipher       *crypt.Cipher
	collector    *metrics.Collector
}

func NewIdentityMiddleware(
	users UserStore,
	sessionStore SessionStore,
	sessions *auth.Sessions,
	cipher *crypt.Cipher,
	collector *metrics.Collector,
) *IdentityMiddleware {
	return &IdentityMiddleware{
		users:        users,
		sessionStore: sessionStore,
		sessions:     sessions,
		cipher:       cipher,
		collector:    collector,
	}
}

// Check short-circuits requests carrying a session id that matches exactly
// one user record; everything else falls through to the next handler as
// not-logged-in, except the multi-match fault which is purged and rejected.
func (m *IdentityMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sid, _, err := m.sessions.Parse(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		matches, err := m.users.FindBySession(r.Context(), sid)
		if err != nil {
			slog.Error("error resolving session", "error", err)
			internalError(w)
			return
		}

		switch len(matches) {
		case 0:
			next.ServeHTTP(w, r)
		case 1:
			session, err := m.sessionStore.Find(r.Context(), sid)
			if errors.Is(err, store.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("error loading session", "error", err)
				internalError(w)
				return
			}
			if session.Expired(time.Now()) {
				next.ServeHTTP(w, r)
				return
			}

			user := matches[0]
			email, err := m.cipher.Decrypt(user.Email)
			if err != nil {
				slog.Error("error decrypting user email", "error", err)
				internalError(w)
				return
			}
			writeJSON(w, http.StatusOK, user.Profile(email))
		default:
			m.purge(w, r, sid, matches)
		}
	})
}

// purge destroys every session implicated in a duplicate-session fault and
// clears the session reference on every matching user record.
func (m *IdentityMiddleware) purge(w http.ResponseWriter, r *http.Request, sid string, matches []*models.User) {
	seen := map[string]bool{sid: true}
	ids := []string{sid}
	for _, u := range matches {
		if u.Session != "" && !seen[u.Session] {
			seen[u.Session] = true
			ids = append(ids, u.Session)
		}
	}

	deleted, err := m.sessionStore.DeleteByIDs(r.Context(), ids)
	if err != nil {
		slog.Error("error purging duplicate sessions", "error", err)
		internalError(w)
		return
	}

	for _, id := range ids {
		if _, err := m.users.ClearSession(r.Context(), id); err != nil {
			slog.Error("error clearing session reference", "session", id, "error", err)
			internalError(w)
			return
		}
	}

	if m.collector != nil {
		m.collector.RecordSessionsPurged(int(deleted))
	}

	slog.Warn("purged duplicate sessions", "session", sid, "users", len(matches), "deleted", deleted)
	http.SetCookie(w, m.sessions.ClearCookie())
	http.SetCookie(w, m.sessions.ClearUserCookie())
	conflict(w, "Conflicting sessions detected, please log in again")
}

func requestLogger(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "proxy"
			}
			if collector != nil {
				collector.RecordRequest(route, ww.Status())
			}

			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr,
			)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
