// Package ledger реализует учёт токенов: зачисление, списание с жёстким
// запретом отрицательного баланса и перевод токенов за проведённое занятие.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// Тарифы токенов. Начисления: бонус за регистрацию, награда за верификацию
// навыка, награда преподавателю за занятие. Списания: стоимость занятия
// для ученика, сниженная при активной подписке.
const (
	SignupBonus         = 100
	VerificationReward  = 50
	TeachReward         = 20
	LearnCost           = 20
	LearnCostSubscribed = 10
)

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrInsufficientBalance = repository.ErrInsufficientBalance
	ErrUserNotFound        = repository.ErrUserNotFound
	ErrSkillNotVerified    = errors.New("teaching skill is not verified")
	ErrSkillNotFound       = repository.ErrSkillNotFound
)

// Repository определяет методы хранилища для операций с токенами.
type Repository interface {
	// CreditTokens зачисляет amount токенов пользователю.
	CreditTokens(ctx context.Context, userUID string, amount int) error
	// DebitTokens списывает amount токенов, не допуская отрицательного баланса.
	DebitTokens(ctx context.Context, userUID string, amount int) error
	// GetTokenBalance возвращает текущий баланс.
	GetTokenBalance(ctx context.Context, userUID string) (int, error)
	// TransferInteractionTokens атомарно переводит токены за занятие.
	TransferInteractionTokens(ctx context.Context, teacherUID, learnerUID string, cost, reward int) error
	// IsTeachSkillVerified сообщает статус верификации навыка обучения.
	IsTeachSkillVerified(ctx context.Context, userUID, skill string) (bool, error)
	// GetUser возвращает профиль пользователя.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service реализует бизнес-логику учёта токенов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Credit зачисляет amount токенов на баланс пользователя.
func (s *Service) Credit(ctx context.Context, userUID string, amount int) error {
	const op = "ledger.Credit"
	if amount <= 0 {
		return fmt.Errorf("%s: amount must be positive", op)
	}
	if err := s.repo.CreditTokens(ctx, userUID, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credited tokens", sl.UID(userUID), slog.Int("amount", amount))
	return nil
}

// Debit списывает amount токенов. Возвращает ErrInsufficientBalance,
// если списание увело бы баланс в минус.
func (s *Service) Debit(ctx context.Context, userUID string, amount int) error {
	const op = "ledger.Debit"
	if amount <= 0 {
		return fmt.Errorf("%s: amount must be positive", op)
	}
	if err := s.repo.DebitTokens(ctx, userUID, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("debited tokens", sl.UID(userUID), slog.Int("amount", amount))
	return nil
}

// Balance возвращает текущий баланс токенов пользователя.
func (s *Service) Balance(ctx context.Context, userUID string) (int, error) {
	const op = "ledger.Balance"
	balance, err := s.repo.GetTokenBalance(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// ChargeInteraction проводит расчёт за занятие по верифицированному навыку:
// ученик платит стоимость занятия (сниженную при активной подписке),
// преподаватель получает награду. Перевод атомарен: при нехватке токенов
// у ученика не меняется ни один баланс.
func (s *Service) ChargeInteraction(ctx context.Context, teacherUID, learnerUID, skill string) (int, error) {
	const op = "ledger.ChargeInteraction"

	verified, err := s.repo.IsTeachSkillVerified(ctx, teacherUID, skill)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !verified {
		return 0, fmt.Errorf("%s: %w", op, ErrSkillNotVerified)
	}

	learner, err := s.repo.GetUser(ctx, learnerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	cost := LearnCost
	if learner.HasActiveSubscription(time.Now()) {
		cost = LearnCostSubscribed
	}

	if err := s.repo.TransferInteractionTokens(ctx, teacherUID, learnerUID, cost, TeachReward); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("charged interaction",
		slog.String("teacher_uid", teacherUID),
		slog.String("learner_uid", learnerUID),
		slog.String("skill", skill),
		slog.Int("cost", cost))
	return cost, nil
}
