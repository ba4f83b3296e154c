// Package scheduler процесс ежедневной проверки подписок и удаления
// неподтверждённых аккаунтов, переживших перезапуск API.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/objectstore"
	"github.com/magabrotheeeer/tutoring-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/cleanup"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/notification"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/sweep"
	"github.com/magabrotheeeer/tutoring-platform/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	sweep  *sweep.Service
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger

	hour, minute int
	loc          *time.Location
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	hour, minute, loc, err := cfg.Sweep.SweepTime()
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		closeResources(nil, conn, nil, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, nil, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	// миграции применяет API, планировщик только дожидается схемы
	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, db, logger)
		return nil, err
	}

	// метрики процесса планировщика никто не собирает, счётчики остаются локальными
	m := metrics.New(prometheus.NewRegistry())
	mail := notification.NewQueue(rabbitmq.NewPublisher(ch, rabbitmq.MailExchange))
	assets, err := objectstore.New(cfg.ObjectStorage)
	if err != nil {
		closeResources(ch, conn, db, logger)
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	reclaimer := cleanup.New(logger, db, assets, m, cfg.Accounts.CleanupGrace)

	return &App{
		sweep:  sweep.New(logger, db, mail, reclaimer, m),
		db:     db,
		conn:   conn,
		ch:     ch,
		logger: logger,
		hour:   hour,
		minute: minute,
		loc:    loc,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, db *repository.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}

// Run запускает проверку сразу и затем ежедневно до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler started",
		slog.Int("hour", a.hour),
		slog.Int("minute", a.minute),
		slog.String("location", a.loc.String()),
	)
	a.sweep.Start(ctx, a.hour, a.minute, a.loc)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.db, a.logger)
	return nil
}
