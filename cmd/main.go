// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eventra-hq/eventra/internal/config"
	"github.com/eventra-hq/eventra/internal/database"
	"github.com/eventra-hq/eventra/internal/handler"
	"github.com/eventra-hq/eventra/internal/repository"
	"github.com/eventra-hq/eventra/internal/service"
	"github.com/eventra-hq/eventra/internal/token"
)

func main() {
	ctx := context.Background()
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// A missing signing secret is fatal here, never per-request.
	issuer, err := token.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("configure token issuer")
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}
	log.Info().Msg("connected to postgres")

	// Wire up layers.
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewRefreshTokenRepository(pool)

	eventSvc := service.NewEventService(eventRepo)
	regSvc := service.NewRegistrationService(regRepo, eventRepo)
	authSvc := service.NewAuthService(userRepo, tokenRepo, issuer)
	userSvc := service.NewUserService(userRepo)

	eventHandler := handler.NewEventHandler(eventSvc, regSvc)
	regHandler := handler.NewRegistrationHandler(regSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)

	// Expired refresh tokens stay rejectable without this; purging just
	// keeps the table from growing forever.
	go purgeExpiredTokens(ctx, log, tokenRepo)

	// Build the router.
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.RequestLogger(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Get("/{id}", eventHandler.Get)
		r.Get("/{id}/registrations", eventHandler.ListRegistrations)

		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticator(issuer))
			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
		})
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Use(handler.Authenticator(issuer))
		r.Post("/", regHandler.Create)
		r.Get("/", regHandler.List)
		r.Get("/mine", regHandler.ListMine)
		r.Get("/{id}", regHandler.Get)
		r.Delete("/{id}", regHandler.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(handler.Authenticator(issuer))
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	// Start server with graceful shutdown.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// purgeExpiredTokens deletes long-expired refresh token rows once an hour.
func purgeExpiredTokens(ctx context.Context, log zerolog.Logger, tokens *repository.RefreshTokenRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge expired refresh tokens")
				continue
			}
			if n > 0 {
				log.Info().Int64("purged", n).Msg("expired refresh tokens removed")
			}
		}
	}
}
