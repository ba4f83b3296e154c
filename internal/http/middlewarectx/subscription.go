package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// SubscriptionChecker проверяет состояние подписки аккаунта.
type SubscriptionChecker interface {
	SubscriptionActive(ctx context.Context, accountID string) (bool, error)
}

// SubscriptionMiddleware пропускает запрос, только если подписка аккаунта активна.
// Должен стоять после JWTMiddleware.
func SubscriptionMiddleware(log *slog.Logger, checker SubscriptionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFrom(r.Context())
			if !ok {
				log.Error("account identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("account identification missing"))
				return
			}

			active, err := checker.SubscriptionActive(r.Context(), accountID)
			if err != nil {
				if errors.Is(err, models.ErrAccountNotFound) {
					render.Status(r, http.StatusNotFound)
					render.JSON(w, r, response.Error("user not found"))
					return
				}
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !active {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("active subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
