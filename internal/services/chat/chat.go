// Package chat реализует обмен сообщениями: сохранение, история пары
// с неявной отметкой о прочтении и события для получателей вне сети.
// Обмен разрешён только соединённым пользователям.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/skillswap/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
)

// ErrNotConnected пара пользователей не соединена, обмен сообщениями запрещён.
var ErrNotConnected = errors.New("users are not connected")

// Имя отправителя, подставляемое при отсутствии профиля.
const unknownSender = "Unknown"

// Repository определяет методы хранилища для работы с сообщениями.
type Repository interface {
	// SaveMessage сохраняет сообщение и возвращает его с ID и временем.
	SaveMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	// ListMessagesBetween возвращает сообщения пары по возрастанию времени.
	ListMessagesBetween(ctx context.Context, userA, userB string) ([]*models.Message, error)
	// MarkMessagesRead помечает прочитанными сообщения от sender к receiver.
	MarkMessagesRead(ctx context.Context, senderUID, receiverUID string) (int, error)
	// GetUsername возвращает имя пользователя по UID.
	GetUsername(ctx context.Context, userUID string) (string, error)
	// AreConnected сообщает, соединена ли пара.
	AreConnected(ctx context.Context, userUID, peerUID string) (bool, error)
}

// Notifier публикует события уведомлений.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// Service реализует бизнес-логику обмена сообщениями.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// Send сохраняет сообщение и возвращает его сохранённую форму.
// Имя отправителя фиксируется в момент отправки; для неизвестного
// отправителя подставляется заглушка, отправка при этом не отклоняется.
// Без сохранённой записи доставка не выполняется: ошибку сохранения
// вызывающая сторона обязана вернуть отправителю.
func (s *Service) Send(ctx context.Context, req models.DummyMessage) (*models.Message, error) {
	const op = "chat.Send"

	connected, err := s.repo.AreConnected(ctx, req.SenderUID, req.ReceiverUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !connected {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConnected)
	}

	senderUsername, err := s.repo.GetUsername(ctx, req.SenderUID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		senderUsername = unknownSender
	}

	saved, err := s.repo.SaveMessage(ctx, models.Message{
		SenderUID:      req.SenderUID,
		ReceiverUID:    req.ReceiverUID,
		Content:        req.Content,
		SenderUsername: senderUsername,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// History возвращает сообщения пары по возрастанию времени отправки
// и помечает прочитанными непрочитанные сообщения, адресованные userUID.
// Отметка о прочтении — побочный эффект чтения истории, отдельного
// подтверждения от клиента нет.
func (s *Service) History(ctx context.Context, userUID, peerUID string) ([]*models.Message, error) {
	const op = "chat.History"

	messages, err := s.repo.ListMessagesBetween(ctx, userUID, peerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	marked, err := s.repo.MarkMessagesRead(ctx, peerUID, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if marked > 0 {
		s.log.Info("marked messages as read",
			sl.UID(userUID),
			slog.String("peer_uid", peerUID),
			slog.Int("count", marked))
	}
	return messages, nil
}

// NotifyOffline публикует событие о сообщении, получатель которого
// не подключён к каналу. Доставка произойдёт при следующем чтении истории.
func (s *Service) NotifyOffline(msg *models.Message) {
	if err := s.notifier.Publish(rabbitmq.RoutingKeyMessageOffline, msg); err != nil {
		s.log.Warn("failed to publish offline notification", sl.Err(err))
	}
}
