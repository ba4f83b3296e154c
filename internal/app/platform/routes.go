// Package platform собирает HTTP API платформы: маршруты, middleware и зависимости.
package platform

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/auth/verifyotp"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/payment/getkey"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/payment/order"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/payment/verify"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/profile/remove"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/video/list"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/video/stream"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/handlers/video/upload"
	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
)

// AccountService операции аккаунта, нужные обработчикам и middleware.
type AccountService interface {
	signup.Service
	verifyotp.Service
	login.Service
	forgotpassword.Service
	resetpassword.Service
	update.Service
	remove.Service
	middlewarectx.SubscriptionChecker
}

// VideoService каталог видео.
type VideoService interface {
	upload.Service
	list.Service
}

// PaymentService оплата подписки.
type PaymentService interface {
	getkey.Service
	order.Service
	verify.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Log            *slog.Logger
	Accounts       AccountService
	Videos         VideoService
	Stream         stream.Service
	Payments       PaymentService
	Tokens         middlewarectx.TokenParser
	Health         health.Pinger
	Gatherer       prometheus.Gatherer
	GlobalLimiter  *middlewarectx.Limiter
	ProfileLimiter *middlewarectx.Limiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Log

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.RateLimitMiddleware(log, d.GlobalLimiter),
	)

	jwtAuth := middlewarectx.JWTMiddleware(d.Tokens, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(log, d.Health).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", signup.New(log, d.Accounts).ServeHTTP)
			r.Post("/verify-otp", verifyotp.New(log, d.Accounts).ServeHTTP)
			r.Post("/login", login.New(log, d.Accounts).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(log, d.Accounts).ServeHTTP)
			r.Post("/verify-password-otp", resetpassword.New(log, d.Accounts).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.With(middlewarectx.RateLimitMiddleware(log, d.ProfileLimiter)).
					Method(http.MethodPut, "/update-profile", update.New(log, d.Accounts))
				r.With(middlewarectx.RateLimitMiddleware(log, d.ProfileLimiter)).
					Method(http.MethodPatch, "/update-profile", update.New(log, d.Accounts))
				r.Delete("/delete-user", remove.New(log, d.Accounts).ServeHTTP)
			})
		})

		r.Route("/feat", func(r chi.Router) {
			r.Post("/upload-video", upload.New(log, d.Videos).ServeHTTP)

			streamHandler := stream.New(log, d.Stream)
			r.Get("/stream/{publicId}", streamHandler.ServeHTTP)
			r.Get("/stream/{publicId}/{quality}", streamHandler.ServeHTTP)

			verifyHandler := verify.New(log, d.Payments)
			r.Post("/paymentverification", verifyHandler.ServeHTTP)
			r.Post("/paymentverify", verifyHandler.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.With(middlewarectx.SubscriptionMiddleware(log, d.Accounts)).
					Get("/videos", list.New(log, d.Videos).ServeHTTP)
				r.Get("/getkey", getkey.New(d.Payments).ServeHTTP)

				orderHandler := order.New(log, d.Payments)
				r.Post("/buy-sub", orderHandler.ServeHTTP)
				r.Post("/buysub", orderHandler.ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
