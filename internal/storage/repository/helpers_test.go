package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/tutoring-platform/internal/migrations"
	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// TestDataFactory создаёт тестовые данные напрямую в базе.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateAccount создаёт аккаунт с заданным состоянием подтверждения.
func (f *TestDataFactory) CreateAccount(t *testing.T, email string, state models.VerificationState) *models.Account {
	t.Helper()
	a := &models.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
		ClassLevel:   8,
		Subjects:     []string{"Maths", "Physics"},
		State:        state,
		Subscription: models.Subscription{DueAmount: models.DueAmount(8, 2), State: models.SubscriptionInactive},
	}
	require.NoError(t, f.storage.CreateAccount(context.Background(), a))
	return a
}

// SetCreatedAt сдвигает время создания аккаунта.
func (f *TestDataFactory) SetCreatedAt(t *testing.T, accountID string, createdAt time.Time) {
	t.Helper()
	_, err := f.storage.DB.Exec(`UPDATE accounts SET created_at = $2 WHERE id = $1`, accountID, createdAt)
	require.NoError(t, err)
}

// SetSubscription записывает состояние подписки в обход бизнес-логики.
func (f *TestDataFactory) SetSubscription(t *testing.T, accountID string, state models.SubscriptionState, start, end *time.Time) {
	t.Helper()
	_, err := f.storage.DB.Exec(`UPDATE accounts SET sub_state = $2, sub_start_date = $3, sub_end_date = $4 WHERE id = $1`,
		accountID, string(state), nullTime(start), nullTime(end))
	require.NoError(t, err)
}

// CreateVideo создаёт видео.
func (f *TestDataFactory) CreateVideo(t *testing.T, title string, classLevel int, subject string) *models.Video {
	t.Helper()
	v := &models.Video{
		ID:         uuid.New().String(),
		Title:      title,
		ClassLevel: classLevel,
		Subject:    subject,
		PublicID:   "pub-" + title,
	}
	require.NoError(t, f.storage.CreateVideo(context.Background(), v))
	return v
}

// TestVerification проверяет состояние базы после операций.
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создаёт объект проверок.
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// AccountCount возвращает число аккаунтов с указанным адресом.
func (v *TestVerification) AccountCount(t *testing.T, email string) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM accounts WHERE email = $1", email).Scan(&count)
	require.NoError(t, err)
	return count
}

// PaymentCount возвращает число записей об оплате аккаунта.
func (v *TestVerification) PaymentCount(t *testing.T, accountID string) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM payment_records WHERE account_id = $1", accountID).Scan(&count)
	require.NoError(t, err)
	return count
}

// Payments возвращает записи об оплате аккаунта в порядке добавления.
func (v *TestVerification) Payments(t *testing.T, accountID string) []models.PaymentRecord {
	t.Helper()
	rows, err := v.storage.DB.Query(`SELECT id, account_id, paid_amount, duration_months, paid_at, order_id, payment_id, signature
		FROM payment_records WHERE account_id = $1 ORDER BY id`, accountID)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var result []models.PaymentRecord
	for rows.Next() {
		var r models.PaymentRecord
		require.NoError(t, rows.Scan(&r.ID, &r.AccountID, &r.PaidAmount, &r.DurationMonths, &r.PaidAt,
			&r.OrderID, &r.PaymentID, &r.Signature))
		result = append(result, r)
	}
	require.NoError(t, rows.Err())
	return result
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return storage, cleanup
}
