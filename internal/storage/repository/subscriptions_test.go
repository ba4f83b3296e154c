package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

func TestStorage_ActivateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	a := NewTestDataFactory(storage).CreateAccount(t, "buyer@example.com", models.Verified)
	now := time.Now().UTC().Truncate(time.Microsecond)

	var sub models.Subscription
	require.NoError(t, sub.Activate(now, 3))
	for i, pid := range []string{"pay_1", "pay_2"} {
		require.NoError(t, storage.ActivateSubscription(ctx, a.ID, sub, models.PaymentRecord{
			PaidAmount:     240,
			DurationMonths: 3,
			PaidAt:         now.Add(time.Duration(i) * time.Second),
			OrderID:        "order_" + pid,
			PaymentID:      pid,
			Signature:      "sig",
		}))
	}

	got, err := storage.GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Subscription.Active())
	require.NotNil(t, got.Subscription.EndDate)
	assert.True(t, now.AddDate(0, 3, 0).Equal(*got.Subscription.EndDate))

	payments := NewTestVerification(storage).Payments(t, a.ID)
	require.Len(t, payments, 2)
	assert.Equal(t, "pay_1", payments[0].PaymentID)
	assert.Equal(t, "pay_2", payments[1].PaymentID)
}

func TestStorage_ActivateSubscriptionUnknownAccount(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	var sub models.Subscription
	require.NoError(t, sub.Activate(time.Now(), 1))
	id := uuid.New().String()
	err := storage.ActivateSubscription(context.Background(), id, sub, models.PaymentRecord{
		PaidAmount: 1, DurationMonths: 1, PaidAt: time.Now(), OrderID: "o", PaymentID: "p", Signature: "s",
	})
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	assert.Equal(t, 0, NewTestVerification(storage).PaymentCount(t, id))
}

func TestStorage_ExpireSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	now := time.Now()
	past := now.Add(-time.Hour)
	start := now.AddDate(0, -1, 0)
	future := now.Add(24 * time.Hour)

	expired := factory.CreateAccount(t, "expired@example.com", models.Verified)
	factory.SetSubscription(t, expired.ID, models.SubscriptionActive, &start, &past)
	current := factory.CreateAccount(t, "current@example.com", models.Verified)
	factory.SetSubscription(t, current.ID, models.SubscriptionActive, &start, &future)
	factory.CreateAccount(t, "inactive@example.com", models.Verified)

	list, err := storage.ListExpiredSubscriptions(ctx, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expired.ID, list[0].ID)

	changed, err := storage.ExpireSubscription(ctx, expired.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = storage.ExpireSubscription(ctx, expired.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = storage.ExpireSubscription(ctx, current.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := storage.GetAccountByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, got.Subscription.Active())
	assert.Nil(t, got.Subscription.StartDate)
	assert.Nil(t, got.Subscription.EndDate)
}
