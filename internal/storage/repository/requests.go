package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// CreatePendingRequest создаёт заявку на соединение. Возвращает
// ErrDuplicateRequest, если между парой уже есть заявка в статусе pending
// в любом направлении, и ErrAlreadyConnected, если пользователи уже
// соединены. Проверки и вставка выполняются в одной транзакции.
func (s *Storage) CreatePendingRequest(ctx context.Context, requesterUID, receiverUID string) (int64, error) {
	const op = "storage.CreatePendingRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var connected bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM connections WHERE user_uid = $1 AND peer_uid = $2)`,
			requesterUID, receiverUID).Scan(&connected); err != nil {
			return err
		}
		if connected {
			return ErrAlreadyConnected
		}

		var pending bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM requests
			  WHERE status = 'pending'
			    AND ((requester_uid = $1 AND receiver_uid = $2)
			      OR (requester_uid = $2 AND receiver_uid = $1)))`,
			requesterUID, receiverUID).Scan(&pending); err != nil {
			return err
		}
		if pending {
			return ErrDuplicateRequest
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO requests (requester_uid, receiver_uid, status)
			 VALUES ($1, $2, 'pending')
			 RETURNING id`, requesterUID, receiverUID).Scan(&newID)
		if isUniqueViolation(err) {
			return ErrDuplicateRequest
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AcceptRequest принимает заявку: переводит её в статус accepted и создаёт
// симметричное соединение (две строки connections) одной транзакцией —
// либо обе стороны соединены, либо ни одна.
func (s *Storage) AcceptRequest(ctx context.Context, requesterUID, receiverUID string) error {
	const op = "storage.AcceptRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE requests SET status = 'accepted'
			 WHERE requester_uid = $1 AND receiver_uid = $2 AND status = 'pending'`,
			requesterUID, receiverUID)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrRequestNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO connections (user_uid, peer_uid) VALUES ($1, $2), ($2, $1)`,
			requesterUID, receiverUID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return fmt.Errorf("%s: %w", op, ErrRequestNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeclineRequest отклоняет заявку без создания соединения. Повторный вызов
// возвращает ErrRequestNotFound, обработчик показывает это как уже
// обработанную заявку.
func (s *Storage) DeclineRequest(ctx context.Context, requesterUID, receiverUID string) error {
	const op = "storage.DeclineRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE requests SET status = 'declined'
		 WHERE requester_uid = $1 AND receiver_uid = $2 AND status = 'pending'`,
		requesterUID, receiverUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrRequestNotFound)
	}
	return nil
}

// ListReceivedRequests возвращает входящие pending-заявки пользователя
// с краткими профилями отправителей.
func (s *Storage) ListReceivedRequests(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	const op = "storage.ListReceivedRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.username, u.avatar_url
		  FROM requests r
		  JOIN users u ON u.uid = r.requester_uid
		  WHERE r.receiver_uid = $1 AND r.status = 'pending'
		  ORDER BY r.created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.ProfileSummary
	for rows.Next() {
		var item models.ProfileSummary
		if err := rows.Scan(&item.UID, &item.Username, &item.AvatarURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
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

// ListConnections возвращает профили соединённых пользователей
// со списками навыков.
func (s *Storage) ListConnections(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	const op = "storage.ListConnections"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.username, u.avatar_url
		  FROM connections c
		  JOIN users u ON u.uid = c.peer_uid
		  WHERE c.user_uid = $1
		  ORDER BY c.created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.ProfileSummary
	for rows.Next() {
		var item models.ProfileSummary
		if err := rows.Scan(&item.UID, &item.Username, &item.AvatarURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, item := range result {
		u := &models.User{UID: item.UID}
		if err := s.loadSkills(ctx, u); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.SkillsToTeach = u.SkillsToTeach
		item.SkillsToLearn = u.SkillsToLearn
	}
	return result, nil
}

// AreConnected сообщает, соединена ли пара пользователей.
func (s *Storage) AreConnected(ctx context.Context, userUID, peerUID string) (bool, error) {
	const op = "storage.AreConnected"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var connected bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM connections WHERE user_uid = $1 AND peer_uid = $2)`,
		userUID, peerUID).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return connected, nil
}
