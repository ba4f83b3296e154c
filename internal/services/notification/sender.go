package notification

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/rabbitmq"
)

// Transport открывает соединение с почтовым сервером.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// Sender отправляет письма из очереди.
type Sender struct {
	transport Transport
	log       *slog.Logger
}

// NewSender создаёт Sender.
func NewSender(log *slog.Logger, transport Transport) *Sender {
	return &Sender{
		transport: transport,
		log:       log,
	}
}

// HandleMessage разбирает задание из очереди и отправляет письмо.
// Некорректные задания помечаются rabbitmq.ErrPermanent и не возвращаются в очередь.
func (s *Sender) HandleMessage(body []byte) error {
	const op = "notification.HandleMessage"

	var job models.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal mail job", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if job.Email == "" {
		return fmt.Errorf("%s: %w: empty recipient", op, rabbitmq.ErrPermanent)
	}

	subject, html, err := render(job)
	if err != nil {
		s.log.Error("failed to render mail", sl.Err(err), slog.String("kind", string(job.Kind)))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}

	if err = s.sendEmail(job.Email, subject, html); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent", slog.String("kind", string(job.Kind)), slog.String("to", job.Email))
	return nil
}

func (s *Sender) sendEmail(to, subject, html string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		html,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit smtp session", sl.Err(err))
	}
	return nil
}
