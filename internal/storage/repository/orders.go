package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// CreateOrder сохраняет новый заказ в статусе Pending и возвращает его ID.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (int64, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO orders (order_id, session_id, user_uid, amount, payment_status)
		  VALUES ($1, $2, $3, $4, 'Pending')
		  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		order.OrderID, order.SessionID, order.UserUID, order.Amount).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateOrderFromWebhook обновляет статус оплаты и идентификатор транзакции
// заказа по order_id, пришедшему из webhook. Возвращает обновлённый заказ.
func (s *Storage) UpdateOrderFromWebhook(ctx context.Context, orderID, paymentStatus, transactionID string) (*models.Order, error) {
	const op = "storage.UpdateOrderFromWebhook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET payment_status = $1, transaction_id = $2
		  WHERE order_id = $3
		  RETURNING id, order_id, session_id, user_uid, amount, payment_status, transaction_id, created_at`
	var o models.Order
	var transaction sql.NullString
	err := s.DB.QueryRowContext(ctx, query, paymentStatus, transactionID, orderID).
		Scan(&o.ID, &o.OrderID, &o.SessionID, &o.UserUID, &o.Amount,
			&o.PaymentStatus, &transaction, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if transaction.Valid {
		o.TransactionID = transaction.String
	}
	return &o, nil
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	const op = "storage.ListOrdersByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, order_id, session_id, user_uid, amount, payment_status, transaction_id, created_at
		  FROM orders
		  WHERE user_uid = $1
		  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Order
	for rows.Next() {
		var item models.Order
		var transaction sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &item.SessionID, &item.UserUID,
			&item.Amount, &item.PaymentStatus, &transaction, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if transaction.Valid {
			item.TransactionID = transaction.String
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ActivateSubscription включает оплаченную подписку пользователя
// и продлевает её на месяц от текущего момента либо от прежней даты
// истечения, если она ещё не наступила.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID string) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET subscription_status = 'active',
		      subscription_expiry = GREATEST(COALESCE(subscription_expiry, now()), now()) + INTERVAL '1 month'
		  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
