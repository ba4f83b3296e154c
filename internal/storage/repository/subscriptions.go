package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

// ListExpiredSubscriptions возвращает аккаунты с активной подпиской, срок которой истёк до now.
func (s *Storage) ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]*models.Account, error) {
	const op = "storage.ListExpiredSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE sub_state = 'active' AND sub_end_date < $1
			  ORDER BY sub_end_date`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireSubscription деактивирует подписку, если она всё ещё активна и истекла до now.
// Возвращает false, если строка уже была изменена кем-то другим.
func (s *Storage) ExpireSubscription(ctx context.Context, accountID string, now time.Time) (bool, error) {
	const op = "storage.ExpireSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET sub_state = 'inactive', sub_start_date = NULL, sub_end_date = NULL
			  WHERE id = $1 AND sub_state = 'active' AND sub_end_date < $2`
	res, err := s.DB.ExecContext(ctx, query, accountID, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ActivateSubscription в одной транзакции сохраняет новое окно подписки
// и добавляет запись в историю оплат.
func (s *Storage) ActivateSubscription(ctx context.Context, accountID string, sub models.Subscription, rec models.PaymentRecord) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE accounts
			  SET sub_state = $2, sub_start_date = $3, sub_end_date = $4
			  WHERE id = $1`,
		accountID, string(sub.State), nullTime(sub.StartDate), nullTime(sub.EndDate))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO payment_records
			      (account_id, paid_amount, duration_months, paid_at, order_id, payment_id, signature)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		accountID, rec.PaidAmount, rec.DurationMonths, rec.PaidAt, rec.OrderID, rec.PaymentID, rec.Signature)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
