// Package ws реализует websocket-канал чата: хаб соединений, ключом
// которых служит идентификатор пользователя, и доставку сообщений
// по схеме «сначала сохранить, потом разослать».
package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "skillswap_ws_messages_relayed_total",
	Help: "Total number of chat messages relayed through the websocket hub.",
})

// Relay сохраняет сообщение и уведомляет получателей вне сети.
type Relay interface {
	// Send проверяет соединение пары и сохраняет сообщение.
	Send(ctx context.Context, req models.DummyMessage) (*models.Message, error)
	// NotifyOffline публикует событие для отключённого получателя.
	NotifyOffline(msg *models.Message)
}

// inbound сообщение, принятое от подключённого клиента. Отправитель
// берётся из аутентифицированного соединения, не из тела события.
type inbound struct {
	client      *Client
	ReceiverUID string `json:"receiver"`
	Content     string `json:"content"`
}

// errorEvent отправляется клиенту, чьё сообщение не удалось сохранить.
type errorEvent struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// Hub держит активные соединения по идентификатору пользователя
// и разносит сообщения. Сообщение рассылается только после записи
// в хранилище; при ошибке записи отправитель получает событие об ошибке
// и доставка не выполняется.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound

	relay Relay
	log   *slog.Logger
}

// NewHub создает новый хаб websocket-соединений.
func NewHub(relay Relay, log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		relay:      relay,
		log:        log,
	}
}

// Run обрабатывает регистрацию соединений и входящие сообщения.
// Запускается одной горутиной при старте приложения.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			if h.clients[client.userUID] == nil {
				h.clients[client.userUID] = make(map[*Client]bool)
			}
			h.clients[client.userUID][client] = true
			h.log.Info("websocket client connected", sl.UID(client.userUID))
		case client := <-h.unregister:
			if conns, ok := h.clients[client.userUID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.userUID)
				}
				h.log.Info("websocket client disconnected", sl.UID(client.userUID))
			}
		case msg := <-h.inbound:
			h.handleMessage(ctx, msg)
		}
	}
}

func (h *Hub) handleMessage(ctx context.Context, msg inbound) {
	saved, err := h.relay.Send(ctx, models.DummyMessage{
		SenderUID:   msg.client.userUID,
		ReceiverUID: msg.ReceiverUID,
		Content:     msg.Content,
	})
	if err != nil {
		h.log.Warn("failed to relay message", sl.UID(msg.client.userUID), sl.Err(err))
		h.sendTo(msg.client, errorEvent{Event: "error", Error: "message was not delivered"})
		return
	}
	messagesRelayed.Inc()

	payload, err := json.Marshal(saved)
	if err != nil {
		h.log.Error("failed to marshal saved message", sl.Err(err))
		return
	}
	if !h.deliver(saved.ReceiverUID, payload) {
		h.relay.NotifyOffline(saved)
	}
	// Эхо отправителю: все его соединения видят сообщение.
	h.deliver(saved.SenderUID, payload)
}

// deliver отправляет payload всем соединениям пользователя. Возвращает
// false, если активных соединений нет. Клиент с переполненным буфером
// отключается: медленный потребитель не задерживает остальных.
func (h *Hub) deliver(userUID string, payload []byte) bool {
	conns, ok := h.clients[userUID]
	if !ok || len(conns) == 0 {
		return false
	}
	for client := range conns {
		select {
		case client.send <- payload:
		default:
			h.drop(client)
		}
	}
	return true
}

// sendTo отправляет событие одному клиенту. Клиент мог быть отключён
// при переполнении буфера между приёмом его сообщения и отправкой
// ответа, поэтому перед записью в канал проверяется членство в реестре.
func (h *Hub) sendTo(client *Client, event any) {
	conns, ok := h.clients[client.userUID]
	if !ok || !conns[client] {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal ws event", sl.Err(err))
		return
	}
	select {
	case client.send <- payload:
	default:
		h.drop(client)
	}
}

// drop закрывает соединение клиента и убирает его из реестра.
// Вызывается только из горутины Run.
func (h *Hub) drop(client *Client) {
	conns, ok := h.clients[client.userUID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userUID)
	}
	h.log.Info("websocket client dropped, send buffer full", sl.UID(client.userUID))
}
