// Package sweep ежедневная деактивация истёкших подписок.
//
// Подписка может оставаться активной до ближайшего прогона после окончания
// срока: на путях чтения срок не проверяется.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// SubscriptionRepository операции над подписками.
type SubscriptionRepository interface {
	ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]*models.Account, error)
	ExpireSubscription(ctx context.Context, accountID string, now time.Time) (bool, error)
}

// MailQueue очередь писем.
type MailQueue interface {
	Enqueue(ctx context.Context, job models.MailJob) error
}

// StaleReclaimer удаляет неподтверждённые аккаунты, пережившие перезапуск API.
type StaleReclaimer interface {
	ReclaimStale(ctx context.Context, now time.Time) (int, error)
}

// Result итог одного прогона.
type Result struct {
	Expired int
	Skipped int
	Failed  int
}

// Service выполняет прогоны по расписанию.
type Service struct {
	log       *slog.Logger
	repo      SubscriptionRepository
	mail      MailQueue
	reclaimer StaleReclaimer
	metrics   *metrics.Metrics

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// New создаёт сервис. reclaimer может быть nil.
func New(log *slog.Logger, repo SubscriptionRepository, mail MailQueue, reclaimer StaleReclaimer, m *metrics.Metrics) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		mail:      mail,
		reclaimer: reclaimer,
		metrics:   m,
		now:       time.Now,
		after:     time.After,
	}
}

// Run деактивирует все подписки, истёкшие к текущему моменту. Ошибка по
// одному аккаунту логируется и не прерывает прогон. Повторный запуск без
// изменения времени ничего не меняет.
func (s *Service) Run(ctx context.Context) (Result, error) {
	const op = "sweep.Run"
	log := s.log.With(slog.String("op", op))
	now := s.now()

	accounts, err := s.repo.ListExpiredSubscriptions(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	var res Result
	for _, a := range accounts {
		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		alog := log.With(slog.String("account_id", a.ID))

		if err = a.Subscription.Expire(now); err != nil {
			if errors.Is(err, models.ErrSubscriptionInactive) || errors.Is(err, models.ErrSubscriptionNotExpired) {
				res.Skipped++
				continue
			}
			res.Failed++
			alog.Error("failed to expire subscription", sl.Err(err))
			continue
		}

		changed, err := s.repo.ExpireSubscription(ctx, a.ID, now)
		if err != nil {
			res.Failed++
			s.metrics.SweepFailures.Inc()
			alog.Error("failed to persist expired subscription", sl.Err(err))
			continue
		}
		if !changed {
			res.Skipped++
			continue
		}
		res.Expired++
		s.metrics.SweepExpired.Inc()

		job := models.MailJob{Kind: models.MailSubscriptionExpired, Email: a.Email, FirstName: a.FirstName}
		if err = s.mail.Enqueue(ctx, job); err != nil {
			alog.Warn("failed to enqueue expiry notice", sl.Err(err))
		}
	}

	log.Info("subscription sweep finished",
		slog.Int("expired", res.Expired),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed))
	return res, nil
}

// NextRun ближайший момент после now, когда на часах в loc будет hour:minute.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Start выполняет прогон сразу и затем ежедневно в hour:minute по loc до отмены ctx.
func (s *Service) Start(ctx context.Context, hour, minute int, loc *time.Location) {
	s.tick(ctx)
	for {
		next := NextRun(s.now(), hour, minute, loc)
		s.log.Info("next subscription sweep scheduled", slog.Time("at", next))
		select {
		case <-ctx.Done():
			s.log.Info("subscription sweep stopped")
			return
		case <-s.after(next.Sub(s.now())):
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if _, err := s.Run(ctx); err != nil {
		s.log.Error("subscription sweep failed", sl.Err(err))
	}
	if s.reclaimer == nil {
		return
	}
	if _, err := s.reclaimer.ReclaimStale(ctx, s.now()); err != nil {
		s.log.Error("stale account reclamation failed", sl.Err(err))
	}
}
