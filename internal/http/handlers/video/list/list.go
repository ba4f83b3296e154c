// Package list реализует постраничный список видео для ученика с активной подпиской.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/video"
)

// Query параметры строки запроса.
type Query struct {
	Page       int    `validate:"max=100000"`
	Size       *int   `validate:"omitempty"`
	Search     string `validate:"max=100"`
	ClassLevel *int   `validate:"omitempty,min=1,max=12"`
	Subject    string `validate:"max=50"`
	SortBy     string `validate:"omitempty,oneof=vidTitle createdAt"`
	Order      string `validate:"omitempty,oneof=asc desc"`
}

// Handler обрабатывает запрос списка видео.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику каталога.
type Service interface {
	List(ctx context.Context, accountID string, q video.ListQuery) (*models.VideoPage, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Список видео
// @Description Возвращает страницу видео по предметам ученика. Нужна активная подписка.
// @Tags Videos
// @Security BearerAuth
// @Produce  json
// @Param page query int false "Номер страницы, с 1 до 100000" default(1)
// @Param size query int false "Размер страницы, до 100" default(10)
// @Param search query string false "Поиск по названию"
// @Param classOp query int false "Класс"
// @Param subject query string false "Предмет из списка ученика"
// @Param sortBy query string false "Поле сортировки" Enums(vidTitle, createdAt)
// @Param order query string false "Направление" Enums(asc, desc)
// @Success 200 {object} response.Response{data=models.VideoPage} "Страница видео"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Подписка не активна"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feat/videos [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.video.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountID, ok := middlewarectx.AccountIDFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		log.Warn("invalid query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err = h.validate.Struct(q); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	page, err := h.service.List(r.Context(), accountID, video.ListQuery{
		Page:       q.Page,
		Size:       q.Size,
		Search:     q.Search,
		ClassLevel: q.ClassLevel,
		Subject:    q.Subject,
		SortBy:     q.SortBy,
		Order:      q.Order,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSubjectNotAllowed):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("subject is not in your subjects"))
		case errors.Is(err, models.ErrAccountNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to list videos", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(page))
}

var errNotNumber = errors.New("page, size and classOp must be numbers")

func parseQuery(r *http.Request) (Query, error) {
	v := r.URL.Query()
	q := Query{
		Search:  v.Get("search"),
		Subject: v.Get("subject"),
		SortBy:  v.Get("sortBy"),
		Order:   v.Get("order"),
	}
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, errNotNumber
		}
	}
	if s := v.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			return q, errNotNumber
		}
		q.Size = &size
	}
	if s := v.Get("classOp"); s != "" {
		classLevel, err := strconv.Atoi(s)
		if err != nil {
			return q, errNotNumber
		}
		q.ClassLevel = &classLevel
	}
	return q, nil
}
