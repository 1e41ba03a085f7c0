// Package payment реализует оплату подписки: создание заказа у платёжного
// провайдера, обработку webhook-уведомления о результате оплаты и активацию
// подписки пользователя.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/paymentprovider"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// SubscriptionPrice стоимость месячной подписки в минимальных единицах валюты.
const SubscriptionPrice = 499

// Валюта заказов у провайдера.
const orderCurrency = "INR"

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrOrderNotFound = repository.ErrOrderNotFound
)

// Repository определяет методы хранилища для работы с заказами.
type Repository interface {
	// CreateOrder сохраняет новый заказ в статусе Pending.
	CreateOrder(ctx context.Context, order models.Order) (int64, error)
	// UpdateOrderFromWebhook обновляет статус оплаты заказа.
	UpdateOrderFromWebhook(ctx context.Context, orderID, paymentStatus, transactionID string) (*models.Order, error)
	// ListOrdersByUser возвращает заказы пользователя.
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error)
	// ActivateSubscription включает подписку и продлевает её на месяц.
	ActivateSubscription(ctx context.Context, userUID string) error
	// GetUser возвращает профиль пользователя.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Provider описывает платёжного провайдера.
type Provider interface {
	CreateOrder(ctx context.Context, reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
}

// Service реализует бизнес-логику оплаты подписки.
type Service struct {
	repo     Repository
	provider Provider
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, provider Provider, log *slog.Logger) *Service {
	return &Service{repo: repo, provider: provider, log: log}
}

// CreateOrderResult данные платёжной сессии для клиента.
type CreateOrderResult struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	Amount           int    `json:"amount"`
}

// CreateOrder создаёт заказ на оплату подписки: регистрирует заказ
// у провайдера и сохраняет его в статусе Pending. Идентификатор заказа
// генерируется сервером, клиент не задаёт сумму.
func (s *Service) CreateOrder(ctx context.Context, userUID string) (*CreateOrderResult, error) {
	const op = "payment.CreateOrder"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderID := fmt.Sprintf("order_%s", uuid.NewString())
	resp, err := s.provider.CreateOrder(ctx, paymentprovider.CreateOrderRequest{
		CustomerDetails: paymentprovider.CustomerDetails{
			CustomerID:    user.UID,
			CustomerEmail: user.Email,
		},
		OrderAmount:   SubscriptionPrice,
		OrderCurrency: orderCurrency,
		OrderID:       orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.CreateOrder(ctx, models.Order{
		OrderID:   orderID,
		SessionID: resp.PaymentSessionID,
		UserUID:   userUID,
		Amount:    SubscriptionPrice,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created payment order",
		sl.UID(userUID),
		slog.String("order_id", orderID),
		slog.Int("amount", SubscriptionPrice))
	return &CreateOrderResult{
		OrderID:          orderID,
		PaymentSessionID: resp.PaymentSessionID,
		Amount:           SubscriptionPrice,
	}, nil
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (s *Service) ListOrders(ctx context.Context, userUID string) ([]*models.Order, error) {
	const op = "payment.ListOrders"
	result, err := s.repo.ListOrdersByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
