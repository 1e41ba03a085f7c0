// Package skills реализует редактирование списков навыков пользователя
// и ручную верификацию навыка обучения администратором.
package skills

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrSkillNotFound = repository.ErrSkillNotFound
)

// Repository определяет методы хранилища для работы с навыками.
type Repository interface {
	// GetUsername возвращает имя пользователя по UID.
	GetUsername(ctx context.Context, userUID string) (string, error)
	// ReplaceTeachSkills заменяет список навыков обучения, сохраняя верификацию.
	ReplaceTeachSkills(ctx context.Context, userUID string, skills []models.TeachSkill) error
	// ReplaceLearnSkills заменяет список изучаемых навыков.
	ReplaceLearnSkills(ctx context.Context, userUID string, skills []models.LearnSkill) error
	// VerifySkillAndCredit помечает навык верифицированным и зачисляет награду.
	VerifySkillAndCredit(ctx context.Context, userUID, skill string, reward int) error
}

// MatchInvalidator сбрасывает кеш подбора пользователя.
type MatchInvalidator interface {
	Invalidate(userUID string)
}

// Service реализует бизнес-логику управления навыками.
type Service struct {
	repo        Repository
	invalidator MatchInvalidator
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, invalidator MatchInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, log: log}
}

// Update полностью заменяет оба списка навыков пользователя. Статус
// верификации уже имевшихся навыков обучения сохраняется по имени навыка.
// Изменение навыков сбрасывает кеш подбора.
func (s *Service) Update(ctx context.Context, userUID string, teach []models.DummyTeachSkill, learn []models.DummyLearnSkill) error {
	const op = "skills.Update"

	if _, err := s.repo.GetUsername(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	teachSkills := make([]models.TeachSkill, 0, len(teach))
	for _, ts := range teach {
		level, err := models.ParseLevel(ts.Level)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		teachSkills = append(teachSkills, models.TeachSkill{
			Skill:       ts.Skill,
			Elaboration: ts.Elaboration,
			Level:       level,
		})
	}
	learnSkills := make([]models.LearnSkill, 0, len(learn))
	for _, ls := range learn {
		level, err := models.ParseLevel(ls.DesiredLevel)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		learnSkills = append(learnSkills, models.LearnSkill{
			Skill:        ls.Skill,
			Elaboration:  ls.Elaboration,
			DesiredLevel: level,
		})
	}

	if err := s.repo.ReplaceTeachSkills(ctx, userUID, teachSkills); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.ReplaceLearnSkills(ctx, userUID, learnSkills); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidator.Invalidate(userUID)
	s.log.Info("updated user skills",
		sl.UID(userUID),
		slog.Int("teach", len(teachSkills)),
		slog.Int("learn", len(learnSkills)))
	return nil
}

// Verify помечает навык обучения верифицированным и зачисляет награду
// одной транзакцией. Используется администратором в обход теста.
func (s *Service) Verify(ctx context.Context, userUID, skill string) error {
	const op = "skills.Verify"

	if err := s.repo.VerifySkillAndCredit(ctx, userUID, skill, ledger.VerificationReward); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("verified teaching skill", sl.UID(userUID), slog.String("skill", skill))
	return nil
}
