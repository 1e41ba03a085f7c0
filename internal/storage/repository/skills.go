package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

func insertTeachSkills(ctx context.Context, tx *sql.Tx, userUID string, skills []models.TeachSkill) error {
	query := `INSERT INTO teach_skills (user_uid, skill, elaboration, level, verified)
		  VALUES ($1, $2, $3, $4, $5)`
	for _, ts := range skills {
		if _, err := tx.ExecContext(ctx, query,
			userUID, ts.Skill, ts.Elaboration, ts.Level.String(), ts.Verified); err != nil {
			return err
		}
	}
	return nil
}

func insertLearnSkills(ctx context.Context, tx *sql.Tx, userUID string, skills []models.LearnSkill) error {
	query := `INSERT INTO learn_skills (user_uid, skill, elaboration, desired_level)
		  VALUES ($1, $2, $3, $4)`
	for _, ls := range skills {
		if _, err := tx.ExecContext(ctx, query,
			userUID, ls.Skill, ls.Elaboration, ls.DesiredLevel.String()); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceTeachSkills полностью заменяет список навыков обучения пользователя.
// Статус верификации уже имевшихся навыков сохраняется по имени навыка.
func (s *Storage) ReplaceTeachSkills(ctx context.Context, userUID string, skills []models.TeachSkill) error {
	const op = "storage.ReplaceTeachSkills"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		verified := map[string]bool{}
		rows, err := tx.QueryContext(ctx,
			`SELECT skill, verified FROM teach_skills WHERE user_uid = $1`, userUID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var skill string
			var v bool
			if err := rows.Scan(&skill, &v); err != nil {
				return err
			}
			verified[skill] = v
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if err := rows.Close(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM teach_skills WHERE user_uid = $1`, userUID); err != nil {
			return err
		}
		for i := range skills {
			if verified[skills[i].Skill] {
				skills[i].Verified = true
			}
		}
		return insertTeachSkills(ctx, tx, userUID, skills)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReplaceLearnSkills полностью заменяет список изучаемых навыков пользователя.
func (s *Storage) ReplaceLearnSkills(ctx context.Context, userUID string, skills []models.LearnSkill) error {
	const op = "storage.ReplaceLearnSkills"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM learn_skills WHERE user_uid = $1`, userUID); err != nil {
			return err
		}
		return insertLearnSkills(ctx, tx, userUID, skills)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyTeachSkill помечает навык обучения верифицированным.
// Повторная верификация уже помеченного навыка не является ошибкой.
func (s *Storage) VerifyTeachSkill(ctx context.Context, userUID, skill string) error {
	const op = "storage.VerifyTeachSkill"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE teach_skills SET verified = TRUE WHERE user_uid = $1 AND skill = $2`,
		userUID, skill)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSkillNotFound)
	}
	return nil
}

// VerifySkillAndCredit помечает навык верифицированным и зачисляет награду
// одной транзакцией: либо происходит и то и другое, либо ничего.
func (s *Storage) VerifySkillAndCredit(ctx context.Context, userUID, skill string, reward int) error {
	const op = "storage.VerifySkillAndCredit"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE teach_skills SET verified = TRUE WHERE user_uid = $1 AND skill = $2`,
			userUID, skill)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrSkillNotFound
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET tokens = tokens + $1 WHERE uid = $2`, reward, userUID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSkillNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSkillNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsTeachSkillVerified сообщает, верифицирован ли навык обучения пользователя.
func (s *Storage) IsTeachSkillVerified(ctx context.Context, userUID, skill string) (bool, error) {
	const op = "storage.IsTeachSkillVerified"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var verified bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT verified FROM teach_skills WHERE user_uid = $1 AND skill = $2`,
		userUID, skill).Scan(&verified)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, ErrSkillNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return verified, nil
}
