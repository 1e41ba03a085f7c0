package request

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePendingRequest(ctx context.Context, requesterUID, receiverUID string) (int64, error) {
	args := m.Called(ctx, requesterUID, receiverUID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) AcceptRequest(ctx context.Context, requesterUID, receiverUID string) error {
	return m.Called(ctx, requesterUID, receiverUID).Error(0)
}
func (m *RepoMock) DeclineRequest(ctx context.Context, requesterUID, receiverUID string) error {
	return m.Called(ctx, requesterUID, receiverUID).Error(0)
}
func (m *RepoMock) ListReceivedRequests(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProfileSummary), args.Error(1)
}
func (m *RepoMock) ListConnections(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProfileSummary), args.Error(1)
}
func (m *RepoMock) GetUsername(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSend(t *testing.T) {
	tests := []struct {
		name        string
		requester   string
		receiver    string
		setupMocks  func(r *RepoMock)
		wantErr     error
		wantErrText string
	}{
		{
			name:      "success",
			requester: "u-1",
			receiver:  "u-2",
			setupMocks: func(r *RepoMock) {
				r.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
				r.On("GetUsername", mock.Anything, "u-2").Return("bob", nil).Once()
				r.On("CreatePendingRequest", mock.Anything, "u-1", "u-2").Return(int64(1), nil).Once()
			},
		},
		{
			name:        "request to self",
			requester:   "u-1",
			receiver:    "u-1",
			setupMocks:  func(_ *RepoMock) {},
			wantErrText: "cannot send request to self",
		},
		{
			name:      "receiver does not exist",
			requester: "u-1",
			receiver:  "ghost",
			setupMocks: func(r *RepoMock) {
				r.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
				r.On("GetUsername", mock.Anything, "ghost").
					Return("", repository.ErrUserNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:      "duplicate pending request in either direction",
			requester: "u-1",
			receiver:  "u-2",
			setupMocks: func(r *RepoMock) {
				r.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
				r.On("GetUsername", mock.Anything, "u-2").Return("bob", nil).Once()
				r.On("CreatePendingRequest", mock.Anything, "u-1", "u-2").
					Return(int64(0), repository.ErrDuplicateRequest).Once()
			},
			wantErr: ErrDuplicateRequest,
		},
		{
			name:      "pair already connected",
			requester: "u-1",
			receiver:  "u-2",
			setupMocks: func(r *RepoMock) {
				r.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
				r.On("GetUsername", mock.Anything, "u-2").Return("bob", nil).Once()
				r.On("CreatePendingRequest", mock.Anything, "u-1", "u-2").
					Return(int64(0), repository.ErrAlreadyConnected).Once()
			},
			wantErr: ErrAlreadyConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(repo, new(NotifierMock), newNoopLogger())
			tt.setupMocks(repo)

			err := svc.Send(context.Background(), tt.requester, tt.receiver)
			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.wantErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
			default:
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAccept(t *testing.T) {
	t.Run("success publishes notification", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		svc := New(repo, notifier, newNoopLogger())

		repo.On("AcceptRequest", mock.Anything, "u-1", "u-2").Return(nil).Once()
		notifier.On("Publish", rabbitmq.RoutingKeyRequestAccepted, map[string]string{
			"requester_uid": "u-1",
			"receiver_uid":  "u-2",
		}).Return(nil).Once()

		require.NoError(t, svc.Accept(context.Background(), "u-1", "u-2"))
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("publish failure does not fail accept", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		svc := New(repo, notifier, newNoopLogger())

		repo.On("AcceptRequest", mock.Anything, "u-1", "u-2").Return(nil).Once()
		notifier.On("Publish", rabbitmq.RoutingKeyRequestAccepted, mock.Anything).
			Return(errors.New("amqp down")).Once()

		require.NoError(t, svc.Accept(context.Background(), "u-1", "u-2"))
	})

	t.Run("no pending request", func(t *testing.T) {
		repo := new(RepoMock)
		notifier := new(NotifierMock)
		svc := New(repo, notifier, newNoopLogger())

		repo.On("AcceptRequest", mock.Anything, "u-1", "u-2").
			Return(repository.ErrRequestNotFound).Once()

		err := svc.Accept(context.Background(), "u-1", "u-2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRequestNotFound))
		notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestDecline(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(NotifierMock), newNoopLogger())

		repo.On("DeclineRequest", mock.Anything, "u-1", "u-2").Return(nil).Once()
		require.NoError(t, svc.Decline(context.Background(), "u-1", "u-2"))
	})

	t.Run("repeated decline returns not found", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(NotifierMock), newNoopLogger())

		repo.On("DeclineRequest", mock.Anything, "u-1", "u-2").
			Return(repository.ErrRequestNotFound).Once()

		err := svc.Decline(context.Background(), "u-1", "u-2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRequestNotFound))
	})
}

func TestLists(t *testing.T) {
	profiles := []*models.ProfileSummary{{UID: "u-2", Username: "bob"}}

	t.Run("received requests", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(NotifierMock), newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
		repo.On("ListReceivedRequests", mock.Anything, "u-1").Return(profiles, nil).Once()

		got, err := svc.ListReceived(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, profiles, got)
	})

	t.Run("connections", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(NotifierMock), newNoopLogger())

		repo.On("GetUsername", mock.Anything, "u-1").Return("alice", nil).Once()
		repo.On("ListConnections", mock.Anything, "u-1").Return(profiles, nil).Once()

		got, err := svc.ListConnections(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, profiles, got)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(NotifierMock), newNoopLogger())

		repo.On("GetUsername", mock.Anything, "ghost").
			Return("", repository.ErrUserNotFound).Once()

		_, err := svc.ListReceived(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserNotFound))
	})
}
