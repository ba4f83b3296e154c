// Package resetpassword реализует смену пароля по коду из письма.
package resetpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// Request данные для смены пароля.
type Request struct {
	Email              string `json:"email" validate:"required,email"`
	OTP                string `json:"otp" validate:"required,numeric,len=6"`
	NewPassword        string `json:"newPassword" validate:"required,strongpassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

// Handler обрабатывает смену пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику смены пароля.
type Service interface {
	ResetPassword(ctx context.Context, email, code, newPassword string) error
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
// @Summary Смена пароля по коду
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта, код и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 400 {object} response.ErrorResponse "Неверный или просроченный код"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-password-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

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

	err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrAccountNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, models.ErrInvalidCode):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid code"))
		return
	case errors.Is(err, models.ErrCodeExpired):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("code expired"))
		return
	default:
		log.Error("password reset failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password changed")
	render.JSON(w, r, response.OKWithMessage("password changed"))
}
