// Package getkey отдаёт публичный ключ платёжного шлюза для формы оплаты.
package getkey

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
)

// Result публичный ключ шлюза.
type Result struct {
	Key string `json:"key"`
}

// Service источник ключа.
type Service interface {
	KeyID() string
}

// Handler обрабатывает запрос ключа.
type Handler struct {
	service Service
}

// New создает новый экземпляр Handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Публичный ключ шлюза
// @Tags Payments
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response{data=Result} "Ключ"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Router /feat/getkey [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(Result{Key: h.service.KeyID()}))
}
