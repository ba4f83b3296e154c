// Package sender процесс отправки писем из очереди RabbitMQ.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/tutoring-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/notification"
)

// App читает задания на письма и отправляет их по SMTP.
type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *notification.Sender
	logger *slog.Logger

	requeueDelay time.Duration
}

// New подключается к брокеру и готовит отправителя.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:   conn,
		ch:     ch,
		sender: notification.NewSender(logger, transport),
		logger: logger,

		requeueDelay: cfg.RabbitMQ.RequeueDelay,
	}, nil
}

// Run потребляет очередь писем до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.MailQueue, a.requeueDelay, a.sender.HandleMessage)
	if err != nil {
		a.logger.Error("failed to start mail consumer", sl.Err(err), slog.String("queue", rabbitmq.MailQueue))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
