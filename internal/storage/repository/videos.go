package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

var videoSortColumns = map[string]string{
	"vidTitle":  "title",
	"createdAt": "created_at",
}

// CreateVideo сохраняет описание видео.
func (s *Storage) CreateVideo(ctx context.Context, v *models.Video) error {
	const op = "storage.CreateVideo"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO videos (id, title, class_level, subject, public_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING created_at`
	if err := s.DB.QueryRowContext(ctx, query, v.ID, v.Title, v.ClassLevel, v.Subject, v.PublicID).
		Scan(&v.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListVideos возвращает страницу видео по фильтру и общее число подходящих записей.
// Предметы сравниваются без учёта регистра.
func (s *Storage) ListVideos(ctx context.Context, f models.VideoFilter) ([]models.Video, int, error) {
	const op = "storage.ListVideos"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	lowered := make([]string, 0, len(f.Subjects))
	for _, subj := range f.Subjects {
		lowered = append(lowered, strings.ToLower(subj))
	}
	conds = append(conds, "lower(subject) = ANY("+arg(lowered)+")")
	if f.ClassLevel != nil {
		conds = append(conds, "class_level = "+arg(*f.ClassLevel))
	}
	if f.Search != "" {
		conds = append(conds, "title ILIKE "+arg("%"+escapeLike(f.Search)+"%"))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	column, ok := videoSortColumns[f.SortBy]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}
	query := `SELECT id, title, class_level, subject, public_id, created_at FROM videos` + where +
		fmt.Sprintf(" ORDER BY %s %s, id LIMIT %s OFFSET %s", column, direction, arg(f.Limit), arg(f.Offset))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	videos := make([]models.Video, 0, f.Limit)
	for rows.Next() {
		var v models.Video
		if err = rows.Scan(&v.ID, &v.Title, &v.ClassLevel, &v.Subject, &v.PublicID, &v.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		videos = append(videos, v)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return videos, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
