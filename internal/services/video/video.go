// Package video каталог видеоуроков: добавление и постраничный список
// с фильтрами по классу, предмету и названию.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

const (
	// DefaultPageSize размер страницы по умолчанию.
	DefaultPageSize = 10
	// MaxPageSize максимальный размер страницы.
	MaxPageSize = 100
	// MaxPage последняя допустимая страница, смещение не выходит за int.
	MaxPage = 100000
)

// VideoRepository хранилище видео.
type VideoRepository interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	ListVideos(ctx context.Context, f models.VideoFilter) ([]models.Video, int, error)
}

// AccountGetter чтение аккаунта для фильтра по предметам.
type AccountGetter interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// UploadInput данные нового видео.
type UploadInput struct {
	Title      string
	ClassLevel int
	Subject    string
	PublicID   string
}

// ListQuery параметры запроса списка. Size nil означает размер по умолчанию.
type ListQuery struct {
	Page       int
	Size       *int
	Search     string
	ClassLevel *int
	Subject    string
	SortBy     string
	Order      string
}

// Service сервис каталога.
type Service struct {
	videos   VideoRepository
	accounts AccountGetter
	now      func() time.Time
}

// New создаёт сервис каталога.
func New(videos VideoRepository, accounts AccountGetter) *Service {
	return &Service{videos: videos, accounts: accounts, now: time.Now}
}

// Upload сохраняет метаданные видео, размещённого у видеохостинга.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Video, error) {
	const op = "video.Upload"
	v := &models.Video{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(in.Title),
		ClassLevel: in.ClassLevel,
		Subject:    strings.TrimSpace(in.Subject),
		PublicID:   strings.TrimSpace(in.PublicID),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.videos.CreateVideo(ctx, v); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// List возвращает страницу видео по предметам ученика. Указанный предмет
// должен быть среди предметов аккаунта, иначе ErrSubjectNotAllowed.
func (s *Service) List(ctx context.Context, accountID string, q ListQuery) (*models.VideoPage, error) {
	const op = "video.List"
	a, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subjects := a.Subjects
	if subject := strings.TrimSpace(q.Subject); subject != "" {
		if !a.HasSubject(subject) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSubjectNotAllowed)
		}
		subjects = []string{subject}
	}

	page, size := normalizePage(q.Page, q.Size)
	filter := models.VideoFilter{
		Search:     strings.TrimSpace(q.Search),
		ClassLevel: q.ClassLevel,
		Subjects:   subjects,
		SortBy:     q.SortBy,
		Desc:       strings.EqualFold(q.Order, "desc"),
		Limit:      size,
		Offset:     (page - 1) * size,
	}

	videos, total, err := s.videos.ListVideos(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buildPage(videos, total, page, size), nil
}

func normalizePage(page int, size *int) (int, int) {
	page = min(max(page, 1), MaxPage)
	if size == nil {
		return page, DefaultPageSize
	}
	return page, min(max(*size, 1), MaxPageSize)
}

func buildPage(videos []models.Video, total, page, size int) *models.VideoPage {
	totalPages := (total + size - 1) / size
	return &models.VideoPage{
		Videos:      videos,
		TotalVideos: total,
		TotalPages:  totalPages,
		PageVideos:  len(videos),
		IsFirst:     page == 1,
		IsLast:      page >= totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
