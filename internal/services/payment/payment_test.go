package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/paymentprovider"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateOrder(ctx context.Context, order models.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) UpdateOrderFromWebhook(ctx context.Context, orderID, paymentStatus, transactionID string) (*models.Order, error) {
	args := m.Called(ctx, orderID, paymentStatus, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *RepoMock) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}
func (m *RepoMock) ActivateSubscription(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateOrder(ctx context.Context, reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error) {
	args := m.Called(ctx, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreateOrderResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateOrder(t *testing.T) {
	user := &models.User{UID: "u-1", Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := New(repo, provider, newNoopLogger())

		repo.On("GetUser", mock.Anything, "u-1").Return(user, nil).Once()
		provider.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req paymentprovider.CreateOrderRequest) bool {
			return req.CustomerDetails.CustomerID == "u-1" &&
				req.CustomerDetails.CustomerEmail == "alice@example.com" &&
				req.OrderAmount == SubscriptionPrice &&
				req.OrderCurrency == "INR" &&
				strings.HasPrefix(req.OrderID, "order_")
		})).Return(&paymentprovider.CreateOrderResponse{PaymentSessionID: "session-1"}, nil).Once()
		repo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
			return o.UserUID == "u-1" &&
				o.SessionID == "session-1" &&
				o.Amount == SubscriptionPrice &&
				strings.HasPrefix(o.OrderID, "order_")
		})).Return(int64(1), nil).Once()

		got, err := svc.CreateOrder(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, "session-1", got.PaymentSessionID)
		assert.Equal(t, SubscriptionPrice, got.Amount)
		assert.True(t, strings.HasPrefix(got.OrderID, "order_"))

		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ProviderMock), newNoopLogger())

		repo.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.CreateOrder(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserNotFound))
	})

	t.Run("provider error", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := New(repo, provider, newNoopLogger())

		repo.On("GetUser", mock.Anything, "u-1").Return(user, nil).Once()
		provider.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, errors.New("provider unavailable")).Once()

		_, err := svc.CreateOrder(context.Background(), "u-1")
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestListOrders(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, new(ProviderMock), newNoopLogger())

	orders := []*models.Order{{OrderID: "order_1", UserUID: "u-1"}}
	repo.On("ListOrdersByUser", mock.Anything, "u-1").Return(orders, nil).Once()

	got, err := svc.ListOrders(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, orders, got)
}

func webhookPayload(orderID, status string, amount int) paymentprovider.WebhookPayload {
	var payload paymentprovider.WebhookPayload
	payload.Data.Order.OrderID = orderID
	payload.Data.Order.OrderAmount = amount
	payload.Data.Payment.PaymentID = "txn-1"
	payload.Data.Payment.PaymentStatus = status
	return payload
}

func TestHandleWebhook(t *testing.T) {
	paidOrder := &models.Order{
		OrderID: "order_1",
		UserUID: "u-1",
		Amount:  SubscriptionPrice,
	}

	tests := []struct {
		name       string
		payload    paymentprovider.WebhookPayload
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:    "successful payment activates subscription",
			payload: webhookPayload("order_1", "SUCCESS", SubscriptionPrice),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateOrderFromWebhook", mock.Anything, "order_1", models.PaymentStatusPaid, "txn-1").
					Return(paidOrder, nil).Once()
				r.On("ActivateSubscription", mock.Anything, "u-1").Return(nil).Once()
			},
		},
		{
			name:    "failed payment only updates status",
			payload: webhookPayload("order_1", "FAILED", SubscriptionPrice),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateOrderFromWebhook", mock.Anything, "order_1", models.PaymentStatusFailed, "txn-1").
					Return(paidOrder, nil).Once()
			},
		},
		{
			name:    "pending payment only updates status",
			payload: webhookPayload("order_1", "PENDING", SubscriptionPrice),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateOrderFromWebhook", mock.Anything, "order_1", models.PaymentStatusPending, "txn-1").
					Return(paidOrder, nil).Once()
			},
		},
		{
			name:    "amount mismatch does not activate",
			payload: webhookPayload("order_1", "SUCCESS", SubscriptionPrice-100),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateOrderFromWebhook", mock.Anything, "order_1", models.PaymentStatusPaid, "txn-1").
					Return(paidOrder, nil).Once()
			},
		},
		{
			name:       "missing order id",
			payload:    webhookPayload("", "SUCCESS", SubscriptionPrice),
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrInvalidWebhook,
		},
		{
			name:    "unknown order",
			payload: webhookPayload("order_ghost", "SUCCESS", SubscriptionPrice),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateOrderFromWebhook", mock.Anything, "order_ghost", models.PaymentStatusPaid, "txn-1").
					Return(nil, repository.ErrOrderNotFound).Once()
			},
			wantErr: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(repo, new(ProviderMock), newNoopLogger())
			tt.setupMocks(repo)

			err := svc.HandleWebhook(context.Background(), tt.payload)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			if tt.name == "amount mismatch does not activate" {
				repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"SUCCESS", models.PaymentStatusPaid},
		{"success", models.PaymentStatusPaid},
		{"PENDING", models.PaymentStatusPending},
		{"NOT_ATTEMPTED", models.PaymentStatusPending},
		{"FAILED", models.PaymentStatusFailed},
		{"USER_DROPPED", models.PaymentStatusFailed},
		{"", models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeStatus(tt.provider))
		})
	}
}
