package models

import "time"

// Message представляет сообщение чата между двумя соединёнными
// пользователями. Записи только добавляются; единственная мутация —
// установка флага Read при чтении истории получателем.
// SenderUsername фиксируется в момент отправки и не меняется при
// последующем переименовании пользователя.
type Message struct {
	ID             int64     `json:"id"`
	SenderUID      string    `json:"sender"`
	ReceiverUID    string    `json:"receiver"`
	Content        string    `json:"content"`
	SenderUsername string    `json:"sender_username"`
	SentAt         time.Time `json:"timestamp"`
	Read           bool      `json:"read"`
}

// DummyMessage используется для приёма сообщения из JSON-запроса или
// websocket-события перед сохранением.
type DummyMessage struct {
	SenderUID   string `json:"sender" validate:"required,uuid"`
	ReceiverUID string `json:"receiver" validate:"required,uuid"`
	Content     string `json:"content" validate:"required"`
}
