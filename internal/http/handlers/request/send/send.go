// Package send реализует HTTP-обработчик отправки заявки на соединение.
//
// Handler принимает идентификатор получателя, отправителем служит
// аутентифицированный пользователь из контекста запроса.
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
	"github.com/magabrotheeeer/skillswap/internal/services/request"
)

// Handler управляет HTTP-запросами на отправку заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики заявок.
type Service interface {
	Send(ctx context.Context, requesterUID, receiverUID string) error
}

// Request тело запроса на отправку заявки.
type Request struct {
	ReceiverUID string `json:"receiver_id" validate:"required,uuid"`
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
// @Summary Отправить заявку на соединение
// @Description Создает заявку от текущего пользователя к получателю.
// @Tags Requests
// @Accept  json
// @Produce  json
// @Param request body Request true "Получатель заявки"
// @Success 200 {object} response.Response "Заявка отправлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Заявка или соединение уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отправке заявки"
// @Router /requests [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.request.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requesterUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || requesterUID == "" {
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

	if err := h.service.Send(r.Context(), requesterUID, req.ReceiverUID); err != nil {
		switch {
		case errors.Is(err, request.ErrUserNotFound):
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, request.ErrDuplicateRequest):
			log.Error("duplicate request", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("request between these users already exists"))
		case errors.Is(err, request.ErrAlreadyConnected):
			log.Error("users already connected", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("users are already connected"))
		default:
			log.Error("failed to send request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not send request"))
		}
		return
	}

	log.Info("success to send request", sl.UID(requesterUID))
	render.JSON(w, r, response.OK())
}
