package models

import "time"

// Статусы заявки на соединение. Заявка создаётся в статусе pending,
// accepted и declined — терминальные состояния.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// ConnectionRequest представляет заявку одного пользователя на соединение
// с другим. Для пары (requester, receiver) одновременно существует не более
// одной заявки в статусе pending.
type ConnectionRequest struct {
	ID           int64
	RequesterUID string
	ReceiverUID  string
	Status       string
	CreatedAt    time.Time
}
