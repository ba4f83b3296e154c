package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tutoring-platform/internal/cache"
	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/mediahost"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/migrations"
	"github.com/magabrotheeeer/tutoring-platform/internal/objectstore"
	"github.com/magabrotheeeer/tutoring-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/tutoring-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/account"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/cleanup"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/notification"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/payment"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/stream"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/video"
	"github.com/magabrotheeeer/tutoring-platform/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API платформы.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	cache   *cache.Cache
	conn    *amqp.Connection
	ch      *amqp.Channel
	cleanup *cleanup.Scheduler
}

// New подключает хранилища и брокер, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	a := &App{logger: logger, db: db}

	// без Redis видео отдаётся, но каждый запрос делает HEAD к хостингу
	var probeCache stream.ProbeCache
	if cfg.Redis.Address != "" {
		a.cache, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		probeCache = a.cache
	} else {
		logger.Warn("redis address is empty, probe cache disabled")
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetMailQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	assets, err := objectstore.New(cfg.ObjectStorage)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	if !assets.Enabled() {
		logger.Warn("object storage is not configured, profile images are not stored")
	}
	mail := notification.NewQueue(rabbitmq.NewPublisher(a.ch, rabbitmq.MailExchange))
	tokens := jwt.NewJWTMaker(cfg.JWT.SecretKey, cfg.JWT.TokenTTL)

	a.cleanup = cleanup.New(logger, db, assets, m, cfg.Accounts.CleanupGrace)
	accounts := account.New(logger, db, assets, mail, a.cleanup, tokens, cfg.Accounts)
	videos := video.New(db, db)
	streams := stream.New(logger, mediahost.New(cfg.Media), probeCache, cfg.Media.ProbeCacheTTL, m)
	gateway := paymentprovider.NewClient(cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.APIURL)
	payments := payment.New(logger, db, gateway, cfg.Payment, m)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:            logger,
		Accounts:       accounts,
		Videos:         videos,
		Stream:         streams,
		Payments:       payments,
		Tokens:         tokens,
		Health:         db,
		Gatherer:       registry,
		GlobalLimiter:  middlewarectx.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		ProfileLimiter: middlewarectx.NewLimiter(cfg.RateLimit.ProfileWrites, cfg.RateLimit.ProfileWindow),
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return a, nil
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

// close останавливает таймеры очистки и освобождает соединения.
// Неподтверждённые аккаунты, чьи таймеры не успели сработать, удалит планировщик.
func (a *App) close() {
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
