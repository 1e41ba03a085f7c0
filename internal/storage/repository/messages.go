package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// SaveMessage сохраняет сообщение с read = false и возвращает его
// с заполненными ID и временем отправки.
func (s *Storage) SaveMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	const op = "storage.SaveMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO messages (sender_uid, receiver_uid, content, sender_username, sent_at, read)
		  VALUES ($1, $2, $3, $4, $5, FALSE)
		  RETURNING id, sent_at`
	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	err := s.DB.QueryRowContext(ctx, query,
		msg.SenderUID, msg.ReceiverUID, msg.Content, msg.SenderUsername, sentAt).
		Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	msg.Read = false
	return &msg, nil
}

// ListMessagesBetween возвращает все сообщения между парой пользователей
// в порядке возрастания времени отправки.
func (s *Storage) ListMessagesBetween(ctx context.Context, userA, userB string) ([]*models.Message, error) {
	const op = "storage.ListMessagesBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, sender_uid, receiver_uid, content, sender_username, sent_at, read
		  FROM messages
		  WHERE (sender_uid = $1 AND receiver_uid = $2)
		     OR (sender_uid = $2 AND receiver_uid = $1)
		  ORDER BY sent_at, id`
	rows, err := s.DB.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.ID, &item.SenderUID, &item.ReceiverUID,
			&item.Content, &item.SenderUsername, &item.SentAt, &item.Read); err != nil {
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

// MarkMessagesRead помечает прочитанными все непрочитанные сообщения
// от senderUID к receiverUID. Возвращает количество затронутых строк.
func (s *Storage) MarkMessagesRead(ctx context.Context, senderUID, receiverUID string) (int, error) {
	const op = "storage.MarkMessagesRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE messages SET read = TRUE
		 WHERE sender_uid = $1 AND receiver_uid = $2 AND read = FALSE`,
		senderUID, receiverUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
