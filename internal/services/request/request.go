// Package request реализует обработку заявок на соединение между
// пользователями: отправка, принятие, отклонение и списки. Принятая заявка
// создаёт взаимное соединение, открывающее паре обмен сообщениями.
package request

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/skillswap/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// Ошибки уровня сервиса, проверяются обработчиками через errors.Is.
var (
	ErrUserNotFound     = repository.ErrUserNotFound
	ErrDuplicateRequest = repository.ErrDuplicateRequest
	ErrAlreadyConnected = repository.ErrAlreadyConnected
	ErrRequestNotFound  = repository.ErrRequestNotFound
)

// Repository определяет методы хранилища для работы с заявками.
type Repository interface {
	// CreatePendingRequest создаёт заявку в статусе pending.
	CreatePendingRequest(ctx context.Context, requesterUID, receiverUID string) (int64, error)
	// AcceptRequest принимает заявку и создаёт соединение одной транзакцией.
	AcceptRequest(ctx context.Context, requesterUID, receiverUID string) error
	// DeclineRequest отклоняет заявку.
	DeclineRequest(ctx context.Context, requesterUID, receiverUID string) error
	// ListReceivedRequests возвращает входящие pending-заявки.
	ListReceivedRequests(ctx context.Context, userUID string) ([]*models.ProfileSummary, error)
	// ListConnections возвращает профили соединённых пользователей.
	ListConnections(ctx context.Context, userUID string) ([]*models.ProfileSummary, error)
	// GetUsername возвращает имя пользователя по UID.
	GetUsername(ctx context.Context, userUID string) (string, error)
}

// Notifier публикует события уведомлений.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// Service реализует бизнес-логику заявок на соединение.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// Send создаёт заявку от requesterUID к receiverUID. Оба пользователя
// должны существовать; между парой не должно быть ни действующей заявки
// в любом направлении, ни соединения.
func (s *Service) Send(ctx context.Context, requesterUID, receiverUID string) error {
	const op = "request.Send"

	if requesterUID == receiverUID {
		return fmt.Errorf("%s: cannot send request to self", op)
	}
	for _, uid := range []string{requesterUID, receiverUID} {
		if _, err := s.repo.GetUsername(ctx, uid); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	id, err := s.repo.CreatePendingRequest(ctx, requesterUID, receiverUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created connection request",
		slog.Int64("id", id),
		slog.String("requester_uid", requesterUID),
		slog.String("receiver_uid", receiverUID))
	return nil
}

// Accept принимает заявку: обе стороны оказываются в соединениях друг
// друга, либо, при ошибке, ни одна. Публикует событие уведомления,
// неудача публикации не откатывает принятие.
func (s *Service) Accept(ctx context.Context, requesterUID, receiverUID string) error {
	const op = "request.Accept"

	if err := s.repo.AcceptRequest(ctx, requesterUID, receiverUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("accepted connection request",
		slog.String("requester_uid", requesterUID),
		slog.String("receiver_uid", receiverUID))

	if err := s.notifier.Publish(rabbitmq.RoutingKeyRequestAccepted, map[string]string{
		"requester_uid": requesterUID,
		"receiver_uid":  receiverUID,
	}); err != nil {
		s.log.Warn("failed to publish accept notification", sl.Err(err))
	}
	return nil
}

// Decline отклоняет заявку без создания соединения. Повторное отклонение
// возвращает ErrRequestNotFound: заявка уже обработана.
func (s *Service) Decline(ctx context.Context, requesterUID, receiverUID string) error {
	const op = "request.Decline"
	if err := s.repo.DeclineRequest(ctx, requesterUID, receiverUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("declined connection request",
		slog.String("requester_uid", requesterUID),
		slog.String("receiver_uid", receiverUID))
	return nil
}

// ListReceived возвращает входящие заявки пользователя.
func (s *Service) ListReceived(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	const op = "request.ListReceived"
	if _, err := s.repo.GetUsername(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ListReceivedRequests(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListConnections возвращает соединения пользователя.
func (s *Service) ListConnections(ctx context.Context, userUID string) ([]*models.ProfileSummary, error) {
	const op = "request.ListConnections"
	if _, err := s.repo.GetUsername(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ListConnections(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
