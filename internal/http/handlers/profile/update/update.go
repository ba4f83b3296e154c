// Package update реализует изменение профиля ученика.
//
// Все поля формы необязательны: пустые значения оставляют сохранённые данные.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/formdata"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/account"
)

// Request поля формы профиля.
type Request struct {
	FirstName  string   `validate:"omitempty,max=50"`
	LastName   string   `validate:"omitempty,max=50"`
	ClassLevel int      `validate:"omitempty,min=1,max=12"`
	Subjects   []string `validate:"omitempty,dive,required,max=50"`
}

// Handler обрабатывает изменение профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику профиля.
type Service interface {
	UpdateProfile(ctx context.Context, accountID string, upd account.ProfileUpdate) (*models.Account, error)
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
// @Summary Изменение профиля
// @Description Меняет имя, класс, предметы и фото. Стоимость подписки пересчитывается.
// @Tags Profile
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param firstName formData string false "Имя"
// @Param lastName formData string false "Фамилия"
// @Param classOp formData int false "Класс"
// @Param subjects formData []string false "Предметы" collectionFormat(multi)
// @Param image formData file false "Фото профиля"
// @Success 200 {object} response.Response{data=models.AccountSummary} "Профиль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/update-profile [put]
// @Router /auth/update-profile [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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

	if err := formdata.Parse(r); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}

	req := Request{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Subjects:  formdata.Subjects(r),
	}
	if v := r.FormValue("classOp"); v != "" {
		classLevel, err := strconv.Atoi(v)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("classOp must be a number"))
			return
		}
		req.ClassLevel = classLevel
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	img, err := formdata.Image(r)
	if err != nil {
		log.Warn("invalid image", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid image"))
		return
	}

	a, err := h.service.UpdateProfile(r.Context(), accountID, account.ProfileUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ClassLevel: req.ClassLevel,
		Subjects:   req.Subjects,
		Image:      img,
	})
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("profile update failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("profile updated", slog.String("account_id", accountID))
	render.JSON(w, r, response.Response{
		Status:  response.StatusOK,
		Message: "profile updated",
		Data:    a.Summary(),
	})
}
