package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dayplan/internal/api"
	"dayplan/internal/auth"
	"dayplan/internal/config"
	"dayplan/internal/crypt"
	"dayplan/internal/metrics"
	"dayplan/internal/proxy"
	"dayplan/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting server", "name", cfg.Server.Name)

	collector := metrics.NewCollector()

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 60*time.Second)
	db, err := store.Connect(connectCtx, cfg.Database.URI, cfg.Database.Name, collector)
	connectCancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()
	slog.Info("database connected", "name", cfg.Database.Name)

	users := store.NewUserRepository(db)
	sessions := store.NewSessionRepository(db)
	events := store.NewEventRepository(db)

	cleanup := store.NewCleanupService(sessions)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go cleanup.Start(cleanupCtx)

	cipher, err := crypt.NewCipher(cfg.Cipher.Passphrase)
	if err != nil {
		slog.Error("failed to initialize cipher", "error", err)
		os.Exit(1)
	}

	sessionService := auth.NewSessions(
		cfg.Auth.SessionSecret,
		cfg.Auth.SessionCookieTTL,
		cfg.Auth.SessionStoreTTL,
	)

	google := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleCallbackURL,
	})

	client, err := proxy.New(cfg.ClientOrigin())
	if err != nil {
		slog.Error("failed to initialize client proxy", "error", err)
		os.Exit(1)
	}
	slog.Info("client proxy configured", "origin", cfg.ClientOrigin())

	server := api.NewServer(
		cfg,
		users,
		sessions,
		events,
		sessionService,
		google,
		cipher,
		db,
		collector,
		client,
	)

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
