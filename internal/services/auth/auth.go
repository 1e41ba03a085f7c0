// Package auth реализует регистрацию и вход пользователей: хэширование
// паролей, создание учётной записи со стартовым бонусом токенов и выдачу JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	"github.com/magabrotheeeer/skillswap/internal/lib/password"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrDuplicateUser      = repository.ErrDuplicateUser
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// Роль, назначаемая при регистрации.
const defaultRole = "user"

// Repository определяет методы хранилища для аутентификации.
type Repository interface {
	// RegisterUser сохраняет пользователя с навыками и стартовым бонусом.
	RegisterUser(ctx context.Context, user models.User, signupBonus int) (string, error)
	// GetUserByLogin возвращает пользователя по username или email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// Service реализует бизнес-логику регистрации и входа.
type Service struct {
	repo  Repository
	maker jwt.Maker
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// AuthResult результат успешной регистрации или входа.
type AuthResult struct {
	UserUID  string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Register создаёт учётную запись. Пароль хэшируется, навыки из запроса
// конвертируются в доменную модель, стартовый бонус зачисляется вместе
// со вставкой пользователя. Возвращает JWT нового пользователя.
func (s *Service) Register(ctx context.Context, req models.DummyUser) (*AuthResult, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         defaultRole,
		AvatarURL:    req.AvatarURL,
	}
	for _, ts := range req.SkillsToTeach {
		level, err := models.ParseLevel(ts.Level)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.SkillsToTeach = append(user.SkillsToTeach, models.TeachSkill{
			Skill:       ts.Skill,
			Elaboration: ts.Elaboration,
			Level:       level,
		})
	}
	for _, ls := range req.SkillsToLearn {
		level, err := models.ParseLevel(ls.DesiredLevel)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.SkillsToLearn = append(user.SkillsToLearn, models.LearnSkill{
			Skill:        ls.Skill,
			Elaboration:  ls.Elaboration,
			DesiredLevel: level,
		})
	}

	uid, err := s.repo.RegisterUser(ctx, user, ledger.SignupBonus)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.Username, user.Role, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("registered new user", sl.UID(uid), slog.String("username", user.Username))
	return &AuthResult{UserUID: uid, Username: user.Username, Token: token}, nil
}

// Login проверяет учётные данные и выдаёт JWT. Неизвестный логин и
// неверный пароль неразличимы для вызывающей стороны.
func (s *Service) Login(ctx context.Context, login, pass string) (*AuthResult, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in", sl.UID(user.UID), slog.String("username", user.Username))
	return &AuthResult{UserUID: user.UID, Username: user.Username, Token: token}, nil
}
