package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, class_level, subjects,
	image_url, verification_state, otp_code, otp_expires_at, otp_purpose, created_at,
	sub_due_amount, sub_state, sub_start_date, sub_end_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                models.Account
		imageURL         sql.NullString
		code, purpose    sql.NullString
		expiresAt        sql.NullTime
		subStart, subEnd sql.NullTime
		state, subState  string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.ClassLevel, textArray(&a.Subjects), &imageURL, &state, &code, &expiresAt, &purpose,
		&a.CreatedAt, &a.Subscription.DueAmount, &subState, &subStart, &subEnd); err != nil {
		return nil, err
	}

	a.ImageURL = imageURL.String
	a.State = models.VerificationState(state)
	a.Subscription.State = models.SubscriptionState(subState)
	if code.Valid {
		a.Code = &models.OneTimeCode{
			Code:      code.String,
			ExpiresAt: expiresAt.Time,
			Purpose:   models.CodePurpose(purpose.String),
		}
	}
	if subStart.Valid {
		a.Subscription.StartDate = &subStart.Time
	}
	if subEnd.Valid {
		a.Subscription.EndDate = &subEnd.Time
	}
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateAccount сохраняет новый аккаунт вместе с выданным кодом подтверждения.
func (s *Storage) CreateAccount(ctx context.Context, a *models.Account) error {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var code, purpose sql.NullString
	var expiresAt sql.NullTime
	if a.Code != nil {
		code = nullString(a.Code.Code)
		purpose = nullString(string(a.Code.Purpose))
		expiresAt = nullTime(&a.Code.ExpiresAt)
	}

	query := `INSERT INTO accounts (id, email, password_hash, first_name, last_name, class_level,
			      subjects, image_url, verification_state, otp_code, otp_expires_at, otp_purpose,
			      sub_due_amount, sub_state)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING created_at`
	err := s.DB.QueryRowContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.ClassLevel,
		a.Subjects, nullString(a.ImageURL), string(a.State), code, expiresAt, purpose,
		a.Subscription.DueAmount, string(a.Subscription.State)).Scan(&a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, models.ErrAccountExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAccountByEmail возвращает аккаунт по адресу почты.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAccountByID возвращает аккаунт по идентификатору.
func (s *Storage) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.GetAccountByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// SetCode записывает одноразовый код, заменяя предыдущий.
func (s *Storage) SetCode(ctx context.Context, accountID string, code models.OneTimeCode) error {
	const op = "storage.SetCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET otp_code = $2, otp_expires_at = $3, otp_purpose = $4
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, accountID, code.Code, code.ExpiresAt, string(code.Purpose))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}
	return nil
}

// ConsumeSignupCode гасит код подтверждения и помечает аккаунт подтверждённым
// одним условным UPDATE. Если код уже погашен или заменён, возвращает ErrInvalidCode.
func (s *Storage) ConsumeSignupCode(ctx context.Context, accountID, code string) error {
	const op = "storage.ConsumeSignupCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET verification_state = 'verified',
			      otp_code = NULL, otp_expires_at = NULL, otp_purpose = NULL
			  WHERE id = $1 AND otp_code = $2 AND otp_purpose = 'signup'`
	return s.execConsume(ctx, op, query, accountID, code)
}

// ConsumeResetCode гасит код сброса и заменяет хэш пароля одним условным UPDATE.
func (s *Storage) ConsumeResetCode(ctx context.Context, accountID, code, passwordHash string) error {
	const op = "storage.ConsumeResetCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_hash = $3,
			      otp_code = NULL, otp_expires_at = NULL, otp_purpose = NULL
			  WHERE id = $1 AND otp_code = $2 AND otp_purpose = 'reset'`
	return s.execConsume(ctx, op, query, accountID, code, passwordHash)
}

func (s *Storage) execConsume(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCode)
	}
	return nil
}

// UpdateProfile сохраняет изменяемые поля профиля и пересчитанную стоимость подписки.
func (s *Storage) UpdateProfile(ctx context.Context, a *models.Account) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET first_name = $2, last_name = $3, class_level = $4, subjects = $5,
			      image_url = $6, sub_due_amount = $7
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, a.ID, a.FirstName, a.LastName, a.ClassLevel,
		a.Subjects, nullString(a.ImageURL), a.Subscription.DueAmount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}
	return nil
}

// DeleteAccount удаляет аккаунт и возвращает ссылку на его изображение.
// История оплат удаляется каскадно.
func (s *Storage) DeleteAccount(ctx context.Context, id string) (string, error) {
	const op = "storage.DeleteAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var imageURL sql.NullString
	err := s.DB.QueryRowContext(ctx, `DELETE FROM accounts WHERE id = $1 RETURNING image_url`, id).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return imageURL.String, nil
}

// DeleteUnverifiedAccount удаляет аккаунт, только если он всё ещё не подтверждён.
// deleted=false означает, что аккаунт подтверждён или отсутствует.
func (s *Storage) DeleteUnverifiedAccount(ctx context.Context, email string) (deleted bool, imageURL string, err error) {
	const op = "storage.DeleteUnverifiedAccount"
	select {
	case <-ctx.Done():
		return false, "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var image sql.NullString
	query := `DELETE FROM accounts
			  WHERE email = $1 AND verification_state = 'unverified'
			  RETURNING image_url`
	err = s.DB.QueryRowContext(ctx, query, email).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("%s: %w", op, err)
	}
	return true, image.String, nil
}

// DeleteStaleUnverified удаляет неподтверждённые аккаунты, созданные раньше before,
// и возвращает их адреса и изображения.
func (s *Storage) DeleteStaleUnverified(ctx context.Context, before time.Time) ([]*models.Account, error) {
	const op = "storage.DeleteStaleUnverified"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM accounts
			  WHERE verification_state = 'unverified' AND created_at < $1
			  RETURNING id, email, image_url`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Account
	for rows.Next() {
		var a models.Account
		var image sql.NullString
		if err = rows.Scan(&a.ID, &a.Email, &image); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.ImageURL = image.String
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
