package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// ListMatchCandidates возвращает пользователей, которые обучают хотя бы
// одному из изучаемых навыков userUID и изучают хотя бы один из его навыков
// обучения. Предварительный отбор по именам навыков; сопоставление уровней
// выполняет сервис подбора. Кандидаты возвращаются со списками навыков.
func (s *Storage) ListMatchCandidates(ctx context.Context, userUID string) ([]*models.User, error) {
	const op = "storage.ListMatchCandidates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.username, u.avatar_url
		  FROM users u
		  WHERE u.uid <> $1
		    AND EXISTS (
		        SELECT 1 FROM teach_skills ts
		        WHERE ts.user_uid = u.uid
		          AND ts.skill IN (SELECT skill FROM learn_skills WHERE user_uid = $1))
		    AND EXISTS (
		        SELECT 1 FROM learn_skills ls
		        WHERE ls.user_uid = u.uid
		          AND ls.skill IN (SELECT skill FROM teach_skills WHERE user_uid = $1))
		  ORDER BY u.uid`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Username, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, u := range result {
		if err := s.loadSkills(ctx, u); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return result, nil
}
