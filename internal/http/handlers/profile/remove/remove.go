// Package remove реализует удаление аккаунта ученика.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// Handler обрабатывает удаление аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику удаления.
type Service interface {
	DeleteAccount(ctx context.Context, accountID string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Удаляет аккаунт, историю оплат и фото профиля.
// @Tags Profile
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response "Аккаунт удалён"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/delete-user [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.remove"

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

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to delete account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("account deleted", slog.String("account_id", accountID))
	render.JSON(w, r, response.OKWithMessage("user deleted"))
}
