package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Client одно websocket-соединение аутентифицированного пользователя.
// У пользователя может быть несколько соединений одновременно.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userUID string
}

// ServeWS апгрейдит HTTP-запрос до websocket. Пользователь определяется
// по JWT из query-параметра token: клиент не выбирает, от чьего имени
// отправлять сообщения.
func ServeWS(hub *Hub, maker jwt.Maker, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := maker.ParseToken(r.URL.Query().Get("token"))
		if err != nil {
			log.Warn("rejected websocket connection", sl.Err(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("failed to upgrade connection", sl.Err(err))
			return
		}

		client := &Client{
			hub:     hub,
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			userUID: claims.UserUID,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump(log)
	}
}

// readPump читает события соединения и передаёт их хабу. Завершение
// чтения снимает регистрацию клиента и закрывает соединение.
func (c *Client) readPump(log *slog.Logger) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", sl.UID(c.userUID), sl.Err(err))
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn("malformed websocket event", sl.UID(c.userUID), sl.Err(err))
			continue
		}
		msg.client = c
		c.hub.inbound <- msg
	}
}

// writePump пишет исходящие сообщения и пинги. Закрытие канала send
// завершает соединение.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
