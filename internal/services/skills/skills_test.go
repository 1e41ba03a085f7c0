package skills

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUsername(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) ReplaceTeachSkills(ctx context.Context, userUID string, skills []models.TeachSkill) error {
	return m.Called(ctx, userUID, skills).Error(0)
}
func (m *RepoMock) ReplaceLearnSkills(ctx context.Context, userUID string, skills []models.LearnSkill) error {
	return m.Called(ctx, userUID, skills).Error(0)
}
func (m *RepoMock) VerifySkillAndCredit(ctx context.Context, userUID, skill string, reward int) error {
	return m.Called(ctx, userUID, skill, reward).Error(0)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(userUID string) {
	m.Called(userUID)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUpdate(t *testing.T) {
	teach := []models.DummyTeachSkill{
		{Skill: "Python", Elaboration: "backend", Level: "expert"},
	}
	learn := []models.DummyLearnSkill{
		{Skill: "Guitar", Elaboration: "acoustic", DesiredLevel: "beginner"},
	}

	t.Run("replaces both lists and invalidates match cache", func(t *testing.T) {
		repo := new(RepoMock)
		invalidator := new(InvalidatorMock)
		svc := New(repo, invalidator, newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
		repo.On("ReplaceTeachSkills", mock.Anything, "u-1", mock.MatchedBy(func(skills []models.TeachSkill) bool {
			return len(skills) == 1 &&
				skills[0].Skill == "Python" &&
				skills[0].Level == models.LevelExpert
		})).Return(nil).Once()
		repo.On("ReplaceLearnSkills", mock.Anything, "u-1", mock.MatchedBy(func(skills []models.LearnSkill) bool {
			return len(skills) == 1 &&
				skills[0].Skill == "Guitar" &&
				skills[0].DesiredLevel == models.LevelBeginner
		})).Return(nil).Once()
		invalidator.On("Invalidate", "u-1").Once()

		err := svc.Update(context.Background(), "u-1", teach, learn)
		require.NoError(t, err)

		repo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("empty lists clear skills", func(t *testing.T) {
		repo := new(RepoMock)
		invalidator := new(InvalidatorMock)
		svc := New(repo, invalidator, newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
		repo.On("ReplaceTeachSkills", mock.Anything, "u-1", []models.TeachSkill{}).Return(nil).Once()
		repo.On("ReplaceLearnSkills", mock.Anything, "u-1", []models.LearnSkill{}).Return(nil).Once()
		invalidator.On("Invalidate", "u-1").Once()

		err := svc.Update(context.Background(), "u-1", nil, nil)
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		invalidator := new(InvalidatorMock)
		svc := New(repo, invalidator, newNoopLogger())

		repo.On("GetUsername", mock.Anything, "ghost").
			Return("", repository.ErrUserNotFound).Once()

		err := svc.Update(context.Background(), "ghost", teach, learn)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserNotFound))
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything)
	})

	t.Run("invalid level rejects whole update", func(t *testing.T) {
		repo := new(RepoMock)
		invalidator := new(InvalidatorMock)
		svc := New(repo, invalidator, newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()

		bad := []models.DummyTeachSkill{
			{Skill: "Python", Elaboration: "backend", Level: "guru"},
		}
		err := svc.Update(context.Background(), "u-1", bad, learn)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown skill level")
		repo.AssertNotCalled(t, "ReplaceTeachSkills", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replace error does not invalidate cache", func(t *testing.T) {
		repo := new(RepoMock)
		invalidator := new(InvalidatorMock)
		svc := New(repo, invalidator, newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
		repo.On("ReplaceTeachSkills", mock.Anything, "u-1", mock.Anything).
			Return(errors.New("db down")).Once()

		err := svc.Update(context.Background(), "u-1", teach, learn)
		require.Error(t, err)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestVerify(t *testing.T) {
	t.Run("marks skill verified with reward", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(InvalidatorMock), newNoopLogger())

		repo.On("VerifySkillAndCredit", mock.Anything, "u-1", "Python", ledger.VerificationReward).
			Return(nil).Once()

		require.NoError(t, svc.Verify(context.Background(), "u-1", "Python"))
		repo.AssertExpectations(t)
	})

	t.Run("unknown skill", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(InvalidatorMock), newNoopLogger())

		repo.On("VerifySkillAndCredit", mock.Anything, "u-1", "Juggling", ledger.VerificationReward).
			Return(repository.ErrSkillNotFound).Once()

		err := svc.Verify(context.Background(), "u-1", "Juggling")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSkillNotFound))
	})
}
