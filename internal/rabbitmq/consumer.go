package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
)

// ErrPermanent помечает ошибку обработчика, при которой сообщение не нужно
// возвращать в очередь.
var ErrPermanent = errors.New("permanent failure")

const maxInFlight = 10

// ConsumerMessage запускает чтение очереди queueName. Каждое сообщение
// обрабатывается в отдельной горутине, одновременно не больше maxInFlight.
// Ошибка обработчика возвращает сообщение в очередь через requeueDelay,
// кроме ErrPermanent.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string,
	requeueDelay time.Duration, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				if !acquire(ctx, sem) {
					if err := d.Nack(false, true); err != nil {
						log.Error("failed to nack message", sl.Err(err))
					}
					return
				}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					handleDelivery(ctx, log, d, requeueDelay, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// acquire занимает слот обработки. false, если ctx отменён раньше.
func acquire(ctx context.Context, sem chan struct{}) bool {
	select {
	case sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func handleDelivery(ctx context.Context, log *slog.Logger, d amqp.Delivery, requeueDelay time.Duration, handler func([]byte) error) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrPermanent)
	log.Error("failed to handle message", sl.Err(err), slog.Bool("requeue", requeue))
	if requeue && requeueDelay > 0 {
		// при остановке сообщение возвращается в очередь сразу
		timer := time.NewTimer(requeueDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
