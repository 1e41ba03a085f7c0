// Package history реализует HTTP-обработчик чтения истории чата пары.
//
// Handler возвращает сообщения пары по возрастанию времени отправки;
// непрочитанные сообщения, адресованные запрашивающему, помечаются
// прочитанными как побочный эффект чтения.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на чтение истории чата.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чата.
type Service interface {
	History(ctx context.Context, userUID, peerUID string) ([]*models.Message, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История чата пары
// @Description Возвращает сообщения пары по возрастанию времени. Сообщения, адресованные запрашивающему, помечаются прочитанными.
// @Tags Chat
// @Produce  json
// @Param userA path string true "Первый участник"
// @Param userB path string true "Второй участник"
// @Success 200 {array} models.Message "Сообщения пары"
// @Failure 403 {object} response.ErrorResponse "Чужая переписка"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении истории"
// @Router /chat/history/{userA}/{userB} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userA := chi.URLParam(r, "userA")
	userB := chi.URLParam(r, "userB")

	authUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || authUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	if authUID != userA && authUID != userB {
		log.Error("attempt to read another pair history", sl.UID(authUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("cannot read another pair's history"))
		return
	}
	peerUID := userB
	if authUID == userB {
		peerUID = userA
	}

	messages, err := h.service.History(r.Context(), authUID, peerUID)
	if err != nil {
		log.Error("failed to read chat history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read chat history"))
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	log.Info("success to read chat history", sl.UID(authUID), slog.Int("count", len(messages)))
	render.JSON(w, r, messages)
}
