package verify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, c models.PaymentConfirmation) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const signature = "16adbab288b984d7f740e56fd0bb1b90c05c4a26f47a82b6c45925618386501c"

var confirmation = models.PaymentConfirmation{
	OrderID:   "order_A1",
	PaymentID: "pay_B2",
	Signature: signature,
	AccountID: "acc-1",
	Amount:    250,
	Months:    2,
}

func formRequest(query string) *http.Request {
	form := url.Values{
		"razorpay_order_id":   {"order_A1"},
		"razorpay_payment_id": {"pay_B2"},
		"razorpay_signature":  {signature},
	}
	req := httptest.NewRequest(http.MethodPost, "/feat/paymentverification?"+query, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestVerifyHandler_RedirectsOnSuccess(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{
			name: "form body",
			req:  func() *http.Request { return formRequest("userId=acc-1&subAmount=250&duration=2") },
		},
		{
			name: "json body",
			req: func() *http.Request {
				body := `{"razorpay_order_id":"order_A1","razorpay_payment_id":"pay_B2","razorpay_signature":"` + signature + `"}`
				req := httptest.NewRequest(http.MethodPost, "/feat/paymentverify?userId=acc-1&subAmount=250&duration=2", bytes.NewBufferString(body))
				req.Header.Set("Content-Type", "application/json; charset=utf-8")
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Verify", mock.Anything, confirmation).
				Return("https://app.example.com/payment-success?reference=pay_B2", nil).Once()

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, tt.req())

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "https://app.example.com/payment-success?reference=pay_B2", rec.Header().Get("Location"))
			svc.AssertExpectations(t)
		})
	}
}

func TestVerifyHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		serviceErr error
		callsSvc   bool
		wantStatus int
		wantBody   string
	}{
		{name: "missing query", query: "userId=acc-1", wantStatus: http.StatusBadRequest, wantBody: "userId, subAmount and duration are required"},
		{name: "bad signature", query: "userId=acc-1&subAmount=250&duration=2", callsSvc: true, serviceErr: models.ErrInvalidSignature, wantStatus: http.StatusBadRequest, wantBody: "invalid signature"},
		{name: "order mismatch", query: "userId=acc-1&subAmount=250&duration=2", callsSvc: true, serviceErr: models.ErrOrderMismatch, wantStatus: http.StatusBadRequest, wantBody: "payment does not match order"},
		{name: "unknown account", query: "userId=acc-1&subAmount=250&duration=2", callsSvc: true, serviceErr: models.ErrAccountNotFound, wantStatus: http.StatusNotFound, wantBody: "user not found"},
		{name: "ledger failure", query: "userId=acc-1&subAmount=250&duration=2", callsSvc: true, serviceErr: errors.New("tx aborted"), wantStatus: http.StatusInternalServerError, wantBody: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callsSvc {
				svc.On("Verify", mock.Anything, confirmation).Return("", tt.serviceErr).Once()
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, formRequest(tt.query))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Empty(t, rec.Header().Get("Location"))
			svc.AssertExpectations(t)
		})
	}
}

func TestVerifyHandler_MissingSignature(t *testing.T) {
	svc := new(MockService)
	req := httptest.NewRequest(http.MethodPost, "/feat/paymentverification?userId=acc-1&subAmount=250&duration=2",
		strings.NewReader("razorpay_order_id=order_A1&razorpay_payment_id=pay_B2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "field Signature is a required field")
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}
