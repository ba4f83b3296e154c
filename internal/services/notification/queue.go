// Package notification ставит письма в очередь и отправляет их.
//
// API и планировщик публикуют задания models.MailJob через Queue,
// notification-sender читает их из RabbitMQ и отправляет через Sender.
package notification

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/rabbitmq"
)

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Queue очередь заданий на отправку писем.
type Queue struct {
	pub Publisher
}

// NewQueue создаёт очередь поверх издателя.
func NewQueue(pub Publisher) *Queue {
	return &Queue{pub: pub}
}

// Enqueue публикует задание на письмо.
func (q *Queue) Enqueue(ctx context.Context, job models.MailJob) error {
	const op = "notification.Enqueue"
	if err := q.pub.Publish(ctx, rabbitmq.MailRoutingKey, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
