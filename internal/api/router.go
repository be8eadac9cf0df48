package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"dayplan/internal/auth"
	"dayplan/internal/config"
	"dayplan/internal/crypt"
	"dayplan/internal/metrics"
)

type Server struct {
	router *chi.Mux
	config *config.Config
}

func NewServer(
	cfg *config.Config,
	users UserStore,
	sessionStore SessionStore,
	events EventStore,
	sessions *auth.Sessions,
	oauth OAuthProvider,
	cipher *crypt.Cipher,
	pinger Pinger,
	collector *metrics.Collector,
	client http.Handler,
) *Server {
	authHandler := NewAuthHandler(users, sessionStore, sessions, oauth, cipher, cfg.ClientOrigin())
	userHandler := NewUserHandler(users, sessionStore, events, sessions, cipher)
	eventHandler := NewEventHandler(events, users, cfg.Events.OnSubmit)
	healthHandler := NewHealthHandler(pinger)

	identity := NewIdentityMiddleware(users, sessionStore, sessions, cipher, collector)
	loginLimiter := httprate.LimitByIP(10, time.Minute)

	r := chi.NewRouter()
	r.Use(requestLogger(collector))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Group(func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(1 << 20)) // 1 MB

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter).Get("/google", authHandler.GoogleLogin)
			r.Get("/google/callback", authHandler.GoogleCallback)
			r.Get("/logout", authHandler.GoogleLogout)
		})

		r.Route("/login", func(r chi.Router) {
			r.With(identity.Check).Get("/", authHandler.LoginStatus)
			r.With(loginLimiter).Get("/guest", authHandler.GuestLogin)
			r.With(loginLimiter).Post("/user", authHandler.PasswordLogin)
		})

		r.Post("/credentials/logout", authHandler.CredentialsLogout)

		r.Route("/post", func(r chi.Router) {
			r.Post("/user", userHandler.Lookup)
			r.Post("/password", userHandler.SetPassword)
			r.Post("/delete", userHandler.Delete)
			r.Post("/events", eventHandler.Submit)
		})

		r.Get("/get/events", eventHandler.List)
		r.Post("/get/events", eventHandler.List)
		r.Post("/calendar/user/data", eventHandler.CalendarData)
	})

	// Anything that is not an API route belongs to the client dev server.
	r.NotFound(client.ServeHTTP)

	return &Server{router: r, config: cfg}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
