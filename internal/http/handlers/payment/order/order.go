// Package order реализует создание заказа на оплату подписки.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/paymentprovider"
)

// Request сумма и срок подписки. Сумма принимается числом или строкой.
type Request struct {
	Amount   json.Number `json:"amount" validate:"required"`
	Duration int         `json:"duration" validate:"required,min=1,max=12"`
}

// Handler обрабатывает создание заказа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику оплат.
type Service interface {
	CreateOrder(ctx context.Context, accountID string, amount float64, months int) (*paymentprovider.Order, error)
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
// @Summary Заказ на оплату подписки
// @Description Создаёт заказ платёжного шлюза. Сумма передаётся в основных единицах валюты.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Сумма и срок в месяцах"
// @Success 200 {object} response.Response{data=paymentprovider.Order} "Заказ создан"
// @Failure 400 {object} response.ErrorResponse "Некорректная сумма"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feat/buy-sub [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.order"

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
	amount, err := req.Amount.Float64()
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("amount must be a number"))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), accountID, amount, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidAmount):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("amount must be positive"))
		case errors.Is(err, models.ErrInvalidDuration):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("duration must be positive"))
		default:
			log.Error("failed to create order", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("order created", slog.String("order_id", order.ID), slog.String("account_id", accountID))
	render.JSON(w, r, response.OKWithData(order))
}
