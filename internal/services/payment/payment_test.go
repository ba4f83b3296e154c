package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
	"github.com/magabrotheeeer/tutoring-platform/internal/paymentprovider"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockRepository) ActivateSubscription(ctx context.Context, accountID string, sub models.Subscription, rec models.PaymentRecord) error {
	return m.Called(ctx, accountID, sub, rec).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, params paymentprovider.CreateOrderRequest) (*paymentprovider.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Order), args.Error(1)
}

func (m *MockGateway) GetOrder(ctx context.Context, orderID string) (*paymentprovider.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Order), args.Error(1)
}

func (m *MockGateway) KeyID() string {
	return m.Called().String(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const secret = "gateway-secret"

var payNow = time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)

func newTestService(repo *MockRepository, gw *MockGateway, verifyOrder bool) (*Service, *metrics.Metrics) {
	m := metrics.New(nil)
	s := New(newNoopLogger(), repo, gw, config.Payment{
		KeySecret:   secret,
		Currency:    "INR",
		FrontendURL: "https://app.example.com/",
		VerifyOrder: verifyOrder,
	}, m)
	s.now = func() time.Time { return payNow }
	return s, m
}

func confirmation() models.PaymentConfirmation {
	return models.PaymentConfirmation{
		OrderID:   "order_A1",
		PaymentID: "pay_B2",
		Signature: Sign(secret, "order_A1", "pay_B2"),
		AccountID: "acc-1",
		Amount:    250,
		Months:    3,
	}
}

func TestSign_KnownVector(t *testing.T) {
	// echo -n "order_A1|pay_B2" | openssl dgst -sha256 -hmac gateway-secret
	sig := Sign(secret, "order_A1", "pay_B2")
	assert.Equal(t, "16adbab288b984d7f740e56fd0bb1b90c05c4a26f47a82b6c45925618386501c", sig)
	assert.NotEqual(t, sig, Sign(secret, "order_A1|pay_B2", ""))
}

func TestService_ValidSignatureBitFlip(t *testing.T) {
	s, _ := newTestService(new(MockRepository), new(MockGateway), false)
	c := confirmation()
	require.True(t, s.ValidSignature(c.OrderID, c.PaymentID, c.Signature))

	flip := func(v string) string {
		b := []byte(v)
		b[len(b)-1] ^= 0x01
		return string(b)
	}
	assert.False(t, s.ValidSignature(flip(c.OrderID), c.PaymentID, c.Signature))
	assert.False(t, s.ValidSignature(c.OrderID, flip(c.PaymentID), c.Signature))
	assert.False(t, s.ValidSignature(c.OrderID, c.PaymentID, flip(c.Signature)))
	assert.False(t, s.ValidSignature(c.OrderID, c.PaymentID, ""))
}

func TestService_Verify(t *testing.T) {
	start := payNow
	end := payNow.AddDate(0, 3, 0)

	repo := new(MockRepository)
	gw := new(MockGateway)
	repo.On("GetAccountByID", mock.Anything, "acc-1").Return(&models.Account{
		ID:           "acc-1",
		Subscription: models.Subscription{DueAmount: 250, State: models.SubscriptionInactive},
	}, nil).Once()
	repo.On("ActivateSubscription", mock.Anything, "acc-1",
		models.Subscription{DueAmount: 250, State: models.SubscriptionActive, StartDate: &start, EndDate: &end},
		models.PaymentRecord{
			AccountID:      "acc-1",
			PaidAmount:     250,
			DurationMonths: 3,
			PaidAt:         payNow,
			OrderID:        "order_A1",
			PaymentID:      "pay_B2",
			Signature:      Sign(secret, "order_A1", "pay_B2"),
		}).Return(nil).Once()

	s, m := newTestService(repo, gw, false)
	redirect, err := s.Verify(context.Background(), confirmation())
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/payment-success?reference=pay_B2", redirect)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Payments.WithLabelValues("ok")))
	repo.AssertExpectations(t)
	gw.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestService_VerifyRejects(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(c *models.PaymentConfirmation)
		setupMocks func(r *MockRepository)
		wantErr    error
	}{
		{
			name:    "tampered payment id",
			modify:  func(c *models.PaymentConfirmation) { c.PaymentID = "pay_B3" },
			wantErr: models.ErrInvalidSignature,
		},
		{
			name:    "tampered order id",
			modify:  func(c *models.PaymentConfirmation) { c.OrderID = "order_A2" },
			wantErr: models.ErrInvalidSignature,
		},
		{
			name:    "zero duration",
			modify:  func(c *models.PaymentConfirmation) { c.Months = 0 },
			wantErr: models.ErrInvalidDuration,
		},
		{
			name:    "negative amount",
			modify:  func(c *models.PaymentConfirmation) { c.Amount = -1 },
			wantErr: models.ErrInvalidAmount,
		},
		{
			name: "unknown account",
			setupMocks: func(r *MockRepository) {
				r.On("GetAccountByID", mock.Anything, "acc-1").Return(nil, models.ErrAccountNotFound).Once()
			},
			wantErr: models.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			s, _ := newTestService(repo, new(MockGateway), false)

			c := confirmation()
			if tt.modify != nil {
				tt.modify(&c)
			}
			_, err := s.Verify(context.Background(), c)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_VerifyOrderCheck(t *testing.T) {
	tests := []struct {
		name     string
		order    *paymentprovider.Order
		orderErr error
		wantErr  error
	}{
		{
			name:  "order matches",
			order: &paymentprovider.Order{Amount: 25000, Notes: map[string]string{"duration": "3", "userId": "acc-1"}},
		},
		{
			name:    "amount differs",
			order:   &paymentprovider.Order{Amount: 100, Notes: map[string]string{"duration": "3", "userId": "acc-1"}},
			wantErr: models.ErrOrderMismatch,
		},
		{
			name:    "duration differs",
			order:   &paymentprovider.Order{Amount: 25000, Notes: map[string]string{"duration": "12", "userId": "acc-1"}},
			wantErr: models.ErrOrderMismatch,
		},
		{
			name:    "other account",
			order:   &paymentprovider.Order{Amount: 25000, Notes: map[string]string{"duration": "3", "userId": "acc-2"}},
			wantErr: models.ErrOrderMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gw := new(MockGateway)
			gw.On("GetOrder", mock.Anything, "order_A1").Return(tt.order, tt.orderErr).Once()
			if tt.wantErr == nil {
				repo.On("GetAccountByID", mock.Anything, "acc-1").Return(&models.Account{ID: "acc-1"}, nil).Once()
				repo.On("ActivateSubscription", mock.Anything, "acc-1", mock.Anything, mock.Anything).Return(nil).Once()
			}

			s, _ := newTestService(repo, gw, true)
			_, err := s.Verify(context.Background(), confirmation())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			gw.AssertExpectations(t)
		})
	}
}

func TestService_CreateOrder(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateOrder", mock.Anything, paymentprovider.CreateOrderRequest{
		Amount:   19999,
		Currency: "INR",
		Notes:    map[string]string{"userId": "acc-1", "subAmount": "199.99", "duration": "1"},
	}).Return(&paymentprovider.Order{ID: "order_1", Amount: 19999}, nil).Once()

	s, _ := newTestService(new(MockRepository), gw, false)
	order, err := s.CreateOrder(context.Background(), "acc-1", 199.99, 1)
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	gw.AssertExpectations(t)
}

func TestService_CreateOrderInvalid(t *testing.T) {
	gw := new(MockGateway)
	s, _ := newTestService(new(MockRepository), gw, false)

	_, err := s.CreateOrder(context.Background(), "acc-1", 0, 1)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	_, err = s.CreateOrder(context.Background(), "acc-1", 10, 0)
	assert.ErrorIs(t, err, models.ErrInvalidDuration)

	gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("gateway down")).Once()
	_, err = s.CreateOrder(context.Background(), "acc-1", 10, 1)
	assert.Error(t, err)
}

func TestService_KeyID(t *testing.T) {
	gw := new(MockGateway)
	gw.On("KeyID").Return("rzp_live_x").Once()
	s, _ := newTestService(new(MockRepository), gw, false)
	assert.Equal(t, "rzp_live_x", s.KeyID())
}
