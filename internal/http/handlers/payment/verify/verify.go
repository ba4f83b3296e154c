// Package verify принимает подтверждение оплаты от платёжной формы.
//
// Идентификатор аккаунта, сумма и срок передаются в строке запроса,
// данные шлюза в теле формы или JSON. После успешной проверки клиент
// перенаправляется на страницу успешной оплаты.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/validation"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// Request данные, которые шлюз передаёт после оплаты.
type Request struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required,hexadecimal"`
}

// Handler обрабатывает подтверждение оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает проверку оплаты.
type Service interface {
	Verify(ctx context.Context, c models.PaymentConfirmation) (string, error)
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
// @Summary Подтверждение оплаты
// @Description Проверяет подпись шлюза, продлевает подписку и перенаправляет на страницу успеха.
// @Tags Payments
// @Accept  json,x-www-form-urlencoded
// @Produce  json
// @Param userId query string true "Идентификатор аккаунта"
// @Param subAmount query number true "Сумма"
// @Param duration query int true "Срок в месяцах"
// @Param request body Request true "Данные шлюза"
// @Success 302 "Перенаправление на страницу успешной оплаты"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или параметры"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feat/paymentverification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := decode(r)
	if err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err = h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	query := r.URL.Query()
	accountID := query.Get("userId")
	amount, amountErr := strconv.ParseFloat(query.Get("subAmount"), 64)
	months, monthsErr := strconv.Atoi(query.Get("duration"))
	if accountID == "" || amountErr != nil || monthsErr != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("userId, subAmount and duration are required"))
		return
	}

	redirect, err := h.service.Verify(r.Context(), models.PaymentConfirmation{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		AccountID: accountID,
		Amount:    amount,
		Months:    months,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidSignature):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid signature"))
		case errors.Is(err, models.ErrOrderMismatch):
			log.Warn("payment does not match order", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment does not match order"))
		case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidDuration):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("subAmount and duration must be positive"))
		case errors.Is(err, models.ErrAccountNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("payment verification failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

func decode(r *http.Request) (Request, error) {
	var req Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.OrderID = r.PostForm.Get("razorpay_order_id")
	req.PaymentID = r.PostForm.Get("razorpay_payment_id")
	req.Signature = r.PostForm.Get("razorpay_signature")
	return req, nil
}
