// Package send реализует HTTP-обработчик отправки сообщения чата.
//
// Основной канал доставки — websocket; HTTP-обработчик служит запасным
// путём для клиентов без активного соединения. Отправителем всегда
// выступает аутентифицированный пользователь.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/chat"
)

// Handler управляет HTTP-запросами на отправку сообщений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики чата.
type Service interface {
	Send(ctx context.Context, req models.DummyMessage) (*models.Message, error)
}

// Request тело запроса на отправку сообщения.
type Request struct {
	ReceiverUID string `json:"receiver" validate:"required,uuid"`
	Content     string `json:"content" validate:"required"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить сообщение
// @Description Сохраняет сообщение соединённому пользователю и возвращает его сохранённую форму.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body Request true "Получатель и текст"
// @Success 200 {object} models.Message "Сохранённое сообщение"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Пользователи не соединены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отправке"
// @Router /chat/messages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	senderUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || senderUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	saved, err := h.service.Send(r.Context(), models.DummyMessage{
		SenderUID:   senderUID,
		ReceiverUID: req.ReceiverUID,
		Content:     req.Content,
	})
	if err != nil {
		if errors.Is(err, chat.ErrNotConnected) {
			log.Error("users are not connected", sl.UID(senderUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("users are not connected"))
			return
		}
		log.Error("failed to send message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send message"))
		return
	}

	log.Info("success to send message", sl.UID(senderUID), slog.Int64("id", saved.ID))
	render.JSON(w, r, saved)
}
