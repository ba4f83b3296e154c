// Package cleanup удаляет аккаунты, не подтвердившие почту за отведённое время.
//
// Быстрый путь: таймер на каждую регистрацию в процессе API. Таймеры не
// переживают перезапуск, поэтому планировщик дополнительно вызывает
// ReclaimStale и удаляет все просроченные неподтверждённые аккаунты по created_at.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

const deleteTimeout = 30 * time.Second

// AccountRepository операции удаления неподтверждённых аккаунтов.
type AccountRepository interface {
	DeleteUnverifiedAccount(ctx context.Context, email string) (deleted bool, imageURL string, err error)
	DeleteStaleUnverified(ctx context.Context, before time.Time) ([]*models.Account, error)
}

// AssetStore хранилище изображений профиля.
type AssetStore interface {
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

// Scheduler отложенное удаление неподтверждённых аккаунтов.
type Scheduler struct {
	repo    AccountRepository
	assets  AssetStore
	log     *slog.Logger
	metrics *metrics.Metrics
	grace   time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// New создаёт планировщик с окном ожидания grace.
func New(log *slog.Logger, repo AccountRepository, assets AssetStore, m *metrics.Metrics, grace time.Duration) *Scheduler {
	return &Scheduler{
		repo:    repo,
		assets:  assets,
		log:     log,
		metrics: m,
		grace:   grace,
		timers:  make(map[string]*time.Timer),
	}
}

// Schedule взводит таймер удаления для email. Повторный вызов перезапускает таймер.
func (s *Scheduler) Schedule(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[email]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(s.grace, func() {
		s.mu.Lock()
		if s.timers[email] == timer {
			delete(s.timers, email)
		}
		s.mu.Unlock()
		s.fire(email)
	})
	s.timers[email] = timer
}

// Cancel снимает таймер, если он ещё не сработал.
func (s *Scheduler) Cancel(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[email]; ok {
		t.Stop()
		delete(s.timers, email)
	}
}

// Pending число взведённых таймеров.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop отменяет все таймеры. После Stop новые таймеры не взводятся.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for email, t := range s.timers {
		t.Stop()
		delete(s.timers, email)
	}
}

func (s *Scheduler) fire(email string) {
	log := s.log.With(slog.String("op", "cleanup.fire"), slog.String("email", email))
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	deleted, imageURL, err := s.repo.DeleteUnverifiedAccount(ctx, email)
	if err != nil {
		log.Error("failed to delete unverified account", sl.Err(err))
		return
	}
	if !deleted {
		log.Debug("account verified or already gone")
		return
	}
	s.metrics.CleanupDeleted.WithLabelValues("timer").Inc()
	log.Info("unverified account deleted")
	s.deleteAsset(ctx, log, imageURL)
}

// ReclaimStale удаляет неподтверждённые аккаунты, созданные раньше now-grace,
// и их изображения. Возвращает число удалённых аккаунтов.
func (s *Scheduler) ReclaimStale(ctx context.Context, now time.Time) (int, error) {
	log := s.log.With(slog.String("op", "cleanup.ReclaimStale"))
	accounts, err := s.repo.DeleteStaleUnverified(ctx, now.Add(-s.grace))
	if err != nil {
		return 0, err
	}
	for _, a := range accounts {
		s.deleteAsset(ctx, log.With(slog.String("email", a.Email)), a.ImageURL)
	}
	if len(accounts) > 0 {
		s.metrics.CleanupDeleted.WithLabelValues("stale").Add(float64(len(accounts)))
		log.Info("stale unverified accounts deleted", slog.Int("count", len(accounts)))
	}
	return len(accounts), nil
}

func (s *Scheduler) deleteAsset(ctx context.Context, log *slog.Logger, imageURL string) {
	if imageURL == "" {
		return
	}
	key, ok := s.assets.KeyFromURL(imageURL)
	if !ok {
		log.Warn("image url does not belong to object storage", slog.String("image_url", imageURL))
		return
	}
	if err := s.assets.Delete(ctx, key); err != nil {
		log.Error("failed to delete profile image", sl.Err(err))
	}
}
