// Package main Tutoring Platform API
//
// @title           Tutoring Platform API
// @version         1.0
// @description     API платформы видеоуроков: регистрация учеников, каталог и поток видео, оплата подписки

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/tutoring-platform/docs"
	"github.com/magabrotheeeer/tutoring-platform/internal/app/platform"
	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/logger"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting tutoring-platform", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := platform.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("tutoring-platform stopped gracefully")
}
