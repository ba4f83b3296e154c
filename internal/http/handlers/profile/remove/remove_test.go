package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) DeleteAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRemoveHandler(t *testing.T) {
	tests := []struct {
		name       string
		accountID  string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "deleted", accountID: "acc-1", wantStatus: http.StatusOK, wantBody: "user deleted"},
		{name: "no token", wantStatus: http.StatusUnauthorized, wantBody: "unauthorized"},
		{name: "already gone", accountID: "acc-1", serviceErr: models.ErrAccountNotFound, wantStatus: http.StatusNotFound, wantBody: "user not found"},
		{name: "storage failure", accountID: "acc-1", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantBody: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			req := httptest.NewRequest(http.MethodDelete, "/auth/delete-user", nil)
			if tt.accountID != "" {
				svc.On("DeleteAccount", mock.Anything, tt.accountID).Return(tt.serviceErr).Once()
				req = req.WithContext(middlewarectx.WithAccountID(req.Context(), tt.accountID))
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
