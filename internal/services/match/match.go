// Package match реализует двусторонний подбор собеседников по навыкам.
// Кандидат попадает в выдачу только если он может научить запрашивающего
// хотя бы одному нужному навыку на достаточном уровне и сам хочет
// научиться хотя бы одному навыку запрашивающего.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// ErrUserNotFound запрашивающий пользователь не найден.
var ErrUserNotFound = repository.ErrUserNotFound

const cacheTTL = 5 * time.Minute

// Repository определяет методы хранилища для подбора.
type Repository interface {
	// GetUser возвращает профиль пользователя со списками навыков.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListMatchCandidates возвращает кандидатов после отбора по именам навыков.
	ListMatchCandidates(ctx context.Context, userUID string) ([]*models.User, error)
}

// Cache описывает методы для кэширования результатов подбора.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует подбор собеседников с кешированием результатов.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func cacheKey(userUID string) string {
	return fmt.Sprintf("match:%s", userUID)
}

// FindMatches возвращает профиль запрашивающего и ранжированный список
// кандидатов. Операция только читает данные, повтор безопасен.
func (s *Service) FindMatches(ctx context.Context, userUID string) (*models.MatchResult, error) {
	const op = "match.FindMatches"

	var cached models.MatchResult
	found, err := s.cache.Get(cacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("failed to read match cache", slog.String("key", cacheKey(userUID)), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates, err := s.repo.ListMatchCandidates(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	matched := make([]models.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		score, canTeach, canLearn := Score(user, cand)
		if !canTeach || !canLearn {
			continue
		}
		matched = append(matched, models.Candidate{
			UID:           cand.UID,
			Username:      cand.Username,
			AvatarURL:     cand.AvatarURL,
			SkillsToTeach: cand.SkillsToTeach,
			SkillsToLearn: cand.SkillsToLearn,
			MatchScore:    score,
		})
	}
	// При равном счёте порядок определяет uid: выдача детерминирована.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].MatchScore != matched[j].MatchScore {
			return matched[i].MatchScore > matched[j].MatchScore
		}
		return matched[i].UID < matched[j].UID
	})

	result := &models.MatchResult{
		CurrentUser: models.CurrentUserView{
			UID:           user.UID,
			Username:      user.Username,
			AvatarURL:     user.AvatarURL,
			SkillsToTeach: user.SkillsToTeach,
			SkillsToLearn: user.SkillsToLearn,
			Tokens:        user.Tokens,
		},
		MatchedUsers: matched,
	}

	if err := s.cache.Set(cacheKey(userUID), result, cacheTTL); err != nil {
		s.log.Warn("failed to cache match result", slog.String("key", cacheKey(userUID)), slog.Any("err", err))
	}
	return result, nil
}

// Invalidate сбрасывает кеш подбора пользователя. Вызывается при изменении
// списков навыков.
func (s *Service) Invalidate(userUID string) {
	if err := s.cache.Invalidate(cacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate match cache", slog.String("key", cacheKey(userUID)), slog.Any("err", err))
	}
}

// Score считает совместимость пары пользователей. Счёт увеличивается
// за каждый навык, который кандидат преподаёт на уровне не ниже желаемого
// пользователем, и за каждый навык пользователя, который кандидат хочет
// изучить при достаточном уровне пользователя. canTeach и canLearn
// показывают, выполнены ли оба направления.
func Score(user, candidate *models.User) (score int, canTeach, canLearn bool) {
	for _, learn := range user.SkillsToLearn {
		teach := candidate.TeachSkillByName(learn.Skill)
		if teach != nil && teach.Level >= learn.DesiredLevel {
			canTeach = true
			score++
		}
	}
	for _, teach := range user.SkillsToTeach {
		learn := candidate.LearnSkillByName(teach.Skill)
		if learn != nil && teach.Level >= learn.DesiredLevel {
			canLearn = true
			score++
		}
	}
	return score, canTeach, canLearn
}
