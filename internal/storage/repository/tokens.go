package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreditTokens зачисляет amount токенов на баланс пользователя.
func (s *Storage) CreditTokens(ctx context.Context, userUID string, amount int) error {
	const op = "storage.CreditTokens"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET tokens = tokens + $1 WHERE uid = $2`, amount, userUID)
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

// DebitTokens списывает amount токенов. Условный UPDATE не допускает
// отрицательного баланса: ноль затронутых строк при существующем
// пользователе означает нехватку токенов.
func (s *Storage) DebitTokens(ctx context.Context, userUID string, amount int) error {
	const op = "storage.DebitTokens"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET tokens = tokens - $1 WHERE uid = $2 AND tokens >= $1`,
		amount, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE uid = $1)`, userUID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
	}
	return nil
}

// GetTokenBalance возвращает текущий баланс токенов пользователя.
func (s *Storage) GetTokenBalance(ctx context.Context, userUID string) (int, error) {
	const op = "storage.GetTokenBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance int
	err := s.DB.QueryRowContext(ctx,
		`SELECT tokens FROM users WHERE uid = $1`, userUID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// TransferInteractionTokens списывает стоимость занятия с ученика и
// зачисляет награду преподавателю одной транзакцией. При нехватке токенов
// у ученика не меняется ни один баланс.
func (s *Storage) TransferInteractionTokens(ctx context.Context, teacherUID, learnerUID string, cost, reward int) error {
	const op = "storage.TransferInteractionTokens"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET tokens = tokens - $1 WHERE uid = $2 AND tokens >= $1`,
			cost, learnerUID)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrInsufficientBalance
		}
		result, err = tx.ExecContext(ctx,
			`UPDATE users SET tokens = tokens + $1 WHERE uid = $2`, reward, teacherUID)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
