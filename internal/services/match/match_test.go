package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListMatchCandidates(ctx context.Context, userUID string) ([]*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		user         *models.User
		candidate    *models.User
		wantScore    int
		wantCanTeach bool
		wantCanLearn bool
	}{
		{
			name: "bidirectional match counts both directions",
			user: &models.User{
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Python", DesiredLevel: models.LevelIntermediate},
				},
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Guitar", Level: models.LevelExpert},
				},
			},
			candidate: &models.User{
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Python", Level: models.LevelExpert},
				},
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Guitar", DesiredLevel: models.LevelIntermediate},
				},
			},
			wantScore:    2,
			wantCanTeach: true,
			wantCanLearn: true,
		},
		{
			name: "candidate level below desired does not count",
			user: &models.User{
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Python", DesiredLevel: models.LevelExpert},
				},
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Guitar", Level: models.LevelExpert},
				},
			},
			candidate: &models.User{
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Python", Level: models.LevelBeginner},
				},
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Guitar", DesiredLevel: models.LevelBeginner},
				},
			},
			wantScore:    1,
			wantCanTeach: false,
			wantCanLearn: true,
		},
		{
			name: "one-directional match only",
			user: &models.User{
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Python", DesiredLevel: models.LevelBeginner},
				},
			},
			candidate: &models.User{
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Python", Level: models.LevelExpert},
				},
			},
			wantScore:    1,
			wantCanTeach: true,
			wantCanLearn: false,
		},
		{
			name: "equal level counts as sufficient",
			user: &models.User{
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Chess", DesiredLevel: models.LevelIntermediate},
				},
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Cooking", Level: models.LevelBeginner},
				},
			},
			candidate: &models.User{
				SkillsToTeach: []models.TeachSkill{
					{Skill: "Chess", Level: models.LevelIntermediate},
				},
				SkillsToLearn: []models.LearnSkill{
					{Skill: "Cooking", DesiredLevel: models.LevelBeginner},
				},
			},
			wantScore:    2,
			wantCanTeach: true,
			wantCanLearn: true,
		},
		{
			name:         "no overlap",
			user:         &models.User{},
			candidate:    &models.User{},
			wantScore:    0,
			wantCanTeach: false,
			wantCanLearn: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, canTeach, canLearn := Score(tt.user, tt.candidate)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantCanTeach, canTeach)
			assert.Equal(t, tt.wantCanLearn, canLearn)
		})
	}
}

func TestScore_Symmetric(t *testing.T) {
	a := &models.User{
		SkillsToTeach: []models.TeachSkill{{Skill: "Python", Level: models.LevelExpert}},
		SkillsToLearn: []models.LearnSkill{{Skill: "Guitar", DesiredLevel: models.LevelIntermediate}},
	}
	b := &models.User{
		SkillsToTeach: []models.TeachSkill{{Skill: "Guitar", Level: models.LevelExpert}},
		SkillsToLearn: []models.LearnSkill{{Skill: "Python", DesiredLevel: models.LevelBeginner}},
	}

	scoreAB, _, _ := Score(a, b)
	scoreBA, _, _ := Score(b, a)
	assert.Equal(t, scoreAB, scoreBA, "score is symmetric for a matched pair")
}

func TestFindMatches(t *testing.T) {
	user := &models.User{
		UID:      "u-1",
		Username: "alice",
		Tokens:   100,
		SkillsToLearn: []models.LearnSkill{
			{Skill: "Python", DesiredLevel: models.LevelBeginner},
		},
		SkillsToTeach: []models.TeachSkill{
			{Skill: "Guitar", Level: models.LevelExpert},
		},
	}
	// Двусторонний кандидат, попадает в выдачу.
	mutual := &models.User{
		UID:      "u-2",
		Username: "bob",
		SkillsToTeach: []models.TeachSkill{
			{Skill: "Python", Level: models.LevelIntermediate},
		},
		SkillsToLearn: []models.LearnSkill{
			{Skill: "Guitar", DesiredLevel: models.LevelBeginner},
		},
	}
	// Может научить, но ничему не хочет научиться: отсекается.
	oneWay := &models.User{
		UID:      "u-3",
		Username: "carol",
		SkillsToTeach: []models.TeachSkill{
			{Skill: "Python", Level: models.LevelExpert},
		},
	}

	t.Run("filters one-directional candidates", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "match:u-1", mock.Anything).Return(false, nil).Once()
		repo.On("GetUser", mock.Anything, "u-1").Return(user, nil).Once()
		repo.On("ListMatchCandidates", mock.Anything, "u-1").
			Return([]*models.User{mutual, oneWay}, nil).Once()
		cache.On("Set", "match:u-1", mock.Anything, cacheTTL).Return(nil).Once()

		got, err := svc.FindMatches(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, got.MatchedUsers, 1)
		assert.Equal(t, "u-2", got.MatchedUsers[0].UID)
		assert.Equal(t, 2, got.MatchedUsers[0].MatchScore)
		assert.Equal(t, "alice", got.CurrentUser.Username)
		assert.Equal(t, 100, got.CurrentUser.Tokens)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("ties broken by uid for deterministic order", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		twin := &models.User{
			UID:           "u-0",
			Username:      "aaron",
			SkillsToTeach: mutual.SkillsToTeach,
			SkillsToLearn: mutual.SkillsToLearn,
		}

		cache.On("Get", "match:u-1", mock.Anything).Return(false, nil).Once()
		repo.On("GetUser", mock.Anything, "u-1").Return(user, nil).Once()
		repo.On("ListMatchCandidates", mock.Anything, "u-1").
			Return([]*models.User{mutual, twin}, nil).Once()
		cache.On("Set", "match:u-1", mock.Anything, cacheTTL).Return(nil).Once()

		got, err := svc.FindMatches(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, got.MatchedUsers, 2)
		assert.Equal(t, "u-0", got.MatchedUsers[0].UID)
		assert.Equal(t, "u-2", got.MatchedUsers[1].UID)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cached := models.MatchResult{
			CurrentUser: models.CurrentUserView{UID: "u-1", Username: "alice"},
		}
		cache.On("Get", "match:u-1", mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
			ptr := args.Get(1).(*models.MatchResult)
			*ptr = cached
		}).Once()

		got, err := svc.FindMatches(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.CurrentUser.Username)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "match:ghost", mock.Anything).Return(false, nil).Once()
		repo.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.FindMatches(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserNotFound))
	})

	t.Run("cache set error does not fail the request", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "match:u-1", mock.Anything).Return(false, nil).Once()
		repo.On("GetUser", mock.Anything, "u-1").Return(user, nil).Once()
		repo.On("ListMatchCandidates", mock.Anything, "u-1").
			Return([]*models.User{}, nil).Once()
		cache.On("Set", "match:u-1", mock.Anything, cacheTTL).Return(errors.New("redis down")).Once()

		got, err := svc.FindMatches(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Empty(t, got.MatchedUsers)
	})
}

func TestInvalidate(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	cache.On("Invalidate", "match:u-1").Return(nil).Once()
	svc.Invalidate("u-1")
	cache.AssertExpectations(t)
}
