package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/judyrop/handmade-store/auth"
	"github.com/judyrop/handmade-store/config"
	"github.com/judyrop/handmade-store/database"
	"github.com/judyrop/handmade-store/handlers"
	"github.com/judyrop/handmade-store/logger"
	"github.com/judyrop/handmade-store/notify"
)

func main() {
	cfg := config.Load()
	logger.New(logger.Options{
		Service: "handmade-store",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg); err != nil {
		slog.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	h := handlers.New(db, auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL))
	h.CookieSecure = cfg.CookieSecure
	h.Notifier = notifierFor(cfg)

	if cfg.SeedFile != "" {
		res, err := h.Catalog.SeedFromPath(ctx, cfg.SeedFile)
		if err != nil {
			return err
		}
		slog.Info("catalog seeded",
			slog.String("file", cfg.SeedFile),
			slog.Int("categories", res.Categories),
			slog.Int("products", res.Products))
	}

	if cfg.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			return err
		}
		h.Google = verifier
	}

	srv := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: SetupRouter(h, RouterOptions{
			AdminAPIKey: cfg.AdminAPIKey,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// notifierFor enables the email and SMS channels that have credentials.
func notifierFor(cfg config.Config) notify.Notifier {
	var channels notify.Multi
	if cfg.SMTP.Host != "" {
		channels = append(channels, notify.NewEmail(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From))
	}
	if cfg.SMS.APIKey != "" {
		channels = append(channels, notify.NewSMS(cfg.SMS.Endpoint, cfg.SMS.Username, cfg.SMS.APIKey))
	}
	if len(channels) == 0 {
		return notify.Nop{}
	}
	return notify.Logged(channels)
}
