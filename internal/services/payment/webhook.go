package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/paymentprovider"
)

// ErrInvalidWebhook webhook не содержит обязательных полей заказа.
var ErrInvalidWebhook = errors.New("webhook payload is missing order data")

// HandleWebhook обрабатывает уведомление провайдера о результате оплаты.
// Статус заказа обновляется всегда; подписка активируется только при
// успешной оплате на сумму подписки. Webhook может приходить повторно,
// повторная активация лишь продлевает подписку от прежней даты истечения.
func (s *Service) HandleWebhook(ctx context.Context, payload paymentprovider.WebhookPayload) error {
	const op = "payment.HandleWebhook"

	orderID := payload.Data.Order.OrderID
	if orderID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidWebhook)
	}

	status := normalizeStatus(payload.Data.Payment.PaymentStatus)
	order, err := s.repo.UpdateOrderFromWebhook(ctx, orderID, status, payload.Data.Payment.PaymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("processed payment webhook",
		slog.String("order_id", orderID),
		slog.String("payment_status", status))

	if status != models.PaymentStatusPaid {
		return nil
	}
	if payload.Data.Order.OrderAmount != order.Amount {
		s.log.Warn("webhook amount does not match order, subscription not activated",
			slog.String("order_id", orderID),
			slog.Int("webhook_amount", payload.Data.Order.OrderAmount),
			slog.Int("order_amount", order.Amount))
		return nil
	}

	if err := s.repo.ActivateSubscription(ctx, order.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("activated subscription", sl.UID(order.UserUID), slog.String("order_id", orderID))
	return nil
}

// normalizeStatus приводит статус провайдера к внутреннему перечислению.
// Успешный статус провайдера SUCCESS, всё остальное считается неуспехом.
func normalizeStatus(providerStatus string) string {
	switch strings.ToUpper(providerStatus) {
	case "SUCCESS":
		return models.PaymentStatusPaid
	case "PENDING", "NOT_ATTEMPTED":
		return models.PaymentStatusPending
	default:
		return models.PaymentStatusFailed
	}
}
