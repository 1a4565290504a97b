package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/book-catalog/internal/config"
	"github.com/msomdec/book-catalog/internal/events"
	"github.com/msomdec/book-catalog/internal/handler"
	"github.com/msomdec/book-catalog/internal/repository/sqlite"
	"github.com/msomdec/book-catalog/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.NewConfig()
	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	if cfg.Auth.HMACSecret == "" && cfg.Auth.JWKSURL == "" {
		slog.Error("AUTH_ISSUER (or AUTH_JWKS_URL) or AUTH_HMAC_SECRET is required")
		os.Exit(1)
	}
	if cfg.Auth.HMACSecret != "" && len(cfg.Auth.HMACSecret) < 32 {
		slog.Error("AUTH_HMAC_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}
	if cfg.Seed.BcryptCost < 4 || cfg.Seed.BcryptCost > 14 {
		slog.Error("SEED_BCRYPT_COST must be between 4 and 14", "value", cfg.Seed.BcryptCost)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(cfg.Database.Path,
		sqlite.WithDriver(cfg.Database.Driver),
		sqlite.WithMaxOpenConns(cfg.Database.MaxOpenConns),
	)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.Database.Driver, "path", cfg.Database.Path)

	if cfg.Seed.Enabled {
		err := db.Seed(ctx, sqlite.SeedOptions{
			Categories:    sqlite.DefaultSeedCategories,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			BcryptCost:    cfg.Seed.BcryptCost,
		})
		if err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	publisher, err := events.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	if publisher == nil {
		slog.Info("book events disabled; RABBITMQ_URL is not set")
	}

	authService, err := service.NewAuthService(ctx, service.AuthConfig{
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		Algorithms: cfg.Auth.Algorithms,
		JWKSURL:    cfg.Auth.JWKSURL,
		HMACSecret: cfg.Auth.HMACSecret,
	})
	if err != nil {
		slog.Error("failed to initialise token verification", "error", err)
		os.Exit(1)
	}

	var bookEvents service.EventPublisher
	if publisher != nil {
		bookEvents = publisher
	}

	writeLimiter := service.NewTokenBucket(cfg.RateLimit.WriteRPS, cfg.RateLimit.WriteBurst)
	defer writeLimiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Dependencies{
		Books:      service.NewBookService(db.Books(), bookEvents),
		Categories: service.NewCategoryService(db.Categories()),
		Users:      service.NewUserService(db.Users()),
		Auth:       authService,
		DB:         db,
		Scopes: handler.Scopes{
			Create:    cfg.Auth.ScopeCreate,
			Update:    cfg.Auth.ScopeUpdate,
			Delete:    cfg.Auth.ScopeDelete,
			ReadUsers: cfg.Auth.ScopeReadUsers,
		},
		StrictStatus: cfg.API.StrictStatus,
		WriteLimiter: writeLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler.Wrap(mux, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "strict_status", cfg.API.StrictStatus)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
