// Package upload реализует добавление видеоурока в каталог.
package upload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/video"
)

// Request метаданные видео.
type Request struct {
	Title      string `json:"vidTitle" validate:"required,max=200"`
	ClassLevel int    `json:"classOp" validate:"required,min=1,max=12"`
	Subject    string `json:"subject" validate:"required,max=50"`
	PublicID   string `json:"publicId" validate:"required,max=200"`
}

// Handler обрабатывает добавление видео.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику каталога.
type Service interface {
	Upload(ctx context.Context, in video.UploadInput) (*models.Video, error)
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
// @Summary Добавление видео
// @Description Сохраняет метаданные видео, уже размещённого на видеохостинге.
// @Tags Videos
// @Accept  json
// @Produce  json
// @Param request body Request true "Метаданные видео"
// @Success 201 {object} response.Response{data=models.Video} "Видео добавлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feat/upload-video [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.video.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	v, err := h.service.Upload(r.Context(), video.UploadInput{
		Title:      req.Title,
		ClassLevel: req.ClassLevel,
		Subject:    req.Subject,
		PublicID:   req.PublicID,
	})
	if err != nil {
		log.Error("failed to save video", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("video added", slog.String("video_id", v.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(v))
}
