package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// RegisterUser сохраняет нового пользователя вместе с его навыками и
// зачисляет стартовый бонус токенов. Вставка пользователя, навыков и бонуса
// выполняется в одной транзакции. Возвращает UID нового пользователя.
func (s *Storage) RegisterUser(ctx context.Context, user models.User, signupBonus int) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO users (email, username, password_hash, role, avatar_url, tokens)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
		if err := tx.QueryRowContext(ctx, query,
			user.Email, user.Username, user.PasswordHash, user.Role,
			user.AvatarURL, signupBonus).Scan(&newUID); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateUser
			}
			return err
		}
		if err := insertTeachSkills(ctx, tx, newUID, user.SkillsToTeach); err != nil {
			return err
		}
		return insertLearnSkills(ctx, tx, newUID, user.SkillsToLearn)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicateUser)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID вместе со списками навыков.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, avatar_url, tokens,
			      subscription_status, subscription_expiry, created_at
			  FROM users
			  WHERE uid = $1`
	u, err := s.scanUser(ctx, s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadSkills(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByLogin возвращает пользователя по username или email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, avatar_url, tokens,
			      subscription_status, subscription_expiry, created_at
			  FROM users
			  WHERE username = $1 OR email = $1`
	u, err := s.scanUser(ctx, s.DB.QueryRowContext(ctx, query, login))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUsername возвращает имя пользователя по UID. Для неизвестного UID
// возвращает ErrUserNotFound, вызывающая сторона подставляет заглушку.
func (s *Storage) GetUsername(ctx context.Context, userUID string) (string, error) {
	const op = "storage.GetUsername"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var username string
	err := s.DB.QueryRowContext(ctx,
		`SELECT username FROM users WHERE uid = $1`, userUID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return username, nil
}

func (s *Storage) scanUser(_ context.Context, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var subscriptionExpiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.AvatarURL, &u.Tokens, &u.SubscriptionStatus,
		&subscriptionExpiry, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if subscriptionExpiry.Valid {
		u.SubscriptionExpire = &subscriptionExpiry.Time
	}
	return u, nil
}

// loadSkills дозагружает в профиль списки навыков обучения и изучения.
func (s *Storage) loadSkills(ctx context.Context, u *models.User) error {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT skill, elaboration, level, verified
		 FROM teach_skills WHERE user_uid = $1 ORDER BY id`, u.UID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ts models.TeachSkill
		var level string
		if err := rows.Scan(&ts.Skill, &ts.Elaboration, &level, &ts.Verified); err != nil {
			return err
		}
		if ts.Level, err = models.ParseLevel(level); err != nil {
			return err
		}
		u.SkillsToTeach = append(u.SkillsToTeach, ts)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT skill, elaboration, desired_level
		 FROM learn_skills WHERE user_uid = $1 ORDER BY id`, u.UID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ls models.LearnSkill
		var level string
		if err := rows.Scan(&ls.Skill, &ls.Elaboration, &level); err != nil {
			return err
		}
		if ls.DesiredLevel, err = models.ParseLevel(level); err != nil {
			return err
		}
		u.SkillsToLearn = append(u.SkillsToLearn, ls)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}
