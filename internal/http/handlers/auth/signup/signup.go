// Package signup реализует HTTP-обработчик регистрации ученика.
package signup

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
	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/services/account"
)

// Request поля формы регистрации.
type Request struct {
	FirstName       string   `validate:"required,max=50"`
	LastName        string   `validate:"required,max=50"`
	Email           string   `validate:"required,email"`
	Password        string   `validate:"required,strongpassword"`
	ConfirmPassword string   `validate:"required,eqfield=Password"`
	ClassLevel      int      `validate:"required,min=1,max=12"`
	Subjects        []string `validate:"required,min=1,dive,required,max=50"`
}

// Handler обрабатывает регистрацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Signup(ctx context.Context, in account.SignupInput) (*models.Account, error)
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
// @Summary Регистрация ученика
// @Description Создаёт неподтверждённый аккаунт и отправляет код подтверждения на почту.
// @Tags Auth
// @Accept  multipart/form-data
// @Produce  json
// @Param firstName formData string true "Имя"
// @Param lastName formData string true "Фамилия"
// @Param email formData string true "Почта"
// @Param password formData string true "Пароль"
// @Param confirmPassword formData string true "Повтор пароля"
// @Param classOp formData int true "Класс"
// @Param subjects formData []string true "Предметы" collectionFormat(multi)
// @Param image formData file false "Фото профиля"
// @Success 201 {object} response.Response{data=models.AccountSummary} "Аккаунт создан"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 409 {object} response.ErrorResponse "Аккаунт уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := formdata.Parse(r); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}

	classLevel, err := strconv.Atoi(r.FormValue("classOp"))
	if err != nil {
		log.Warn("invalid class level", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("classOp must be a number"))
		return
	}

	req := Request{
		FirstName:       r.FormValue("firstName"),
		LastName:        r.FormValue("lastName"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		ClassLevel:      classLevel,
		Subjects:        formdata.Subjects(r),
	}
	if err = h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
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

	a, err := h.service.Signup(r.Context(), account.SignupInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		ClassLevel: req.ClassLevel,
		Subjects:   req.Subjects,
		Image:      img,
	})
	if err != nil {
		if errors.Is(err, models.ErrAccountExists) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("user already exists"))
			return
		}
		log.Error("signup failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("account created", slog.String("account_id", a.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Response{
		Status:  response.StatusOK,
		Message: "verification code sent to email",
		Data:    a.Summary(),
	})
}
