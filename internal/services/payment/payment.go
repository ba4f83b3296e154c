// Package payment оформление подписки через платёжный шлюз: создание заказа,
// проверка подписи оплаты и запись в историю оплат.
//
// Сумма и срок приходят от клиента и подписью не покрываются. При
// payment.verify_order они сверяются с заказом на стороне шлюза.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/paymentprovider"
)

// AccountRepository операции над аккаунтом и историей оплат.
type AccountRepository interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	ActivateSubscription(ctx context.Context, accountID string, sub models.Subscription, rec models.PaymentRecord) error
}

// Gateway платёжный шлюз.
type Gateway interface {
	CreateOrder(ctx context.Context, params paymentprovider.CreateOrderRequest) (*paymentprovider.Order, error)
	GetOrder(ctx context.Context, orderID string) (*paymentprovider.Order, error)
	KeyID() string
}

// Service сервис оплат.
type Service struct {
	log     *slog.Logger
	repo    AccountRepository
	gateway Gateway
	cfg     config.Payment
	metrics *metrics.Metrics
	now     func() time.Time
}

// New создаёт сервис оплат.
func New(log *slog.Logger, repo AccountRepository, gateway Gateway, cfg config.Payment, m *metrics.Metrics) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

// Sign возвращает hex(HMAC-SHA256(secret, orderID|paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature сравнивает подпись за постоянное время.
func (s *Service) ValidSignature(orderID, paymentID, signature string) bool {
	expected := Sign(s.cfg.KeySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// KeyID публичный ключ шлюза.
func (s *Service) KeyID() string {
	return s.gateway.KeyID()
}

// CreateOrder создаёт заказ шлюза на сумму amount за months месяцев.
func (s *Service) CreateOrder(ctx context.Context, accountID string, amount float64, months int) (*paymentprovider.Order, error) {
	const op = "payment.CreateOrder"
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidAmount)
	}
	if months <= 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidDuration)
	}

	order, err := s.gateway.CreateOrder(ctx, paymentprovider.CreateOrderRequest{
		Amount:   minorUnits(amount),
		Currency: s.cfg.Currency,
		Notes: map[string]string{
			"userId":    accountID,
			"subAmount": strconv.FormatFloat(amount, 'f', -1, 64),
			"duration":  strconv.Itoa(months),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// Verify проверяет подпись и активирует подписку. При неверной подписи
// ничего не меняется. Возвращает адрес страницы успешной оплаты.
func (s *Service) Verify(ctx context.Context, c models.PaymentConfirmation) (string, error) {
	const op = "payment.Verify"
	log := s.log.With(slog.String("op", op), slog.String("order_id", c.OrderID))

	if !s.ValidSignature(c.OrderID, c.PaymentID, c.Signature) {
		s.metrics.Payments.WithLabelValues("invalid_signature").Inc()
		log.Warn("payment signature mismatch")
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidSignature)
	}
	if c.Months <= 0 {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidDuration)
	}
	if c.Amount <= 0 || math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidAmount)
	}

	if s.cfg.VerifyOrder {
		if err := s.matchOrder(ctx, c); err != nil {
			s.metrics.Payments.WithLabelValues("order_mismatch").Inc()
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	a, err := s.repo.GetAccountByID(ctx, c.AccountID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	sub := a.Subscription
	if err = sub.Activate(now, c.Months); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	rec := models.PaymentRecord{
		AccountID:      a.ID,
		PaidAmount:     c.Amount,
		DurationMonths: c.Months,
		PaidAt:         now,
		OrderID:        c.OrderID,
		PaymentID:      c.PaymentID,
		Signature:      c.Signature,
	}
	if err = s.repo.ActivateSubscription(ctx, a.ID, sub, rec); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Payments.WithLabelValues("ok").Inc()
	log.Info("subscription activated", slog.String("account_id", a.ID), slog.Int("months", c.Months))
	return s.cfg.FrontendURL + "payment-success?reference=" + url.QueryEscape(c.PaymentID), nil
}

// matchOrder сверяет сумму, срок и аккаунт с заказом шлюза.
func (s *Service) matchOrder(ctx context.Context, c models.PaymentConfirmation) error {
	order, err := s.gateway.GetOrder(ctx, c.OrderID)
	if err != nil {
		return err
	}
	if order.Amount != minorUnits(c.Amount) ||
		order.Notes["duration"] != strconv.Itoa(c.Months) ||
		order.Notes["userId"] != c.AccountID {
		return models.ErrOrderMismatch
	}
	return nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
