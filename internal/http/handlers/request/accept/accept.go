// Package accept реализует HTTP-обработчик принятия заявки на соединение.
//
// Handler принимает идентификатор отправителя заявки; получателем служит
// аутентифицированный пользователь из контекста запроса. Принятие создаёт
// взаимное соединение, открывающее паре обмен сообщениями.
package accept

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

// Handler управляет HTTP-запросами на принятие заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики заявок.
type Service interface {
	Accept(ctx context.Context, requesterUID, receiverUID string) error
}

// Request тело запроса на принятие заявки.
type Request struct {
	RequesterUID string `json:"requester_id" validate:"required,uuid"`
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
// @Summary Принять заявку на соединение
// @Description Принимает входящую заявку и создаёт взаимное соединение.
// @Tags Requests
// @Accept  json
// @Produce  json
// @Param request body Request true "Отправитель заявки"
// @Success 200 {object} response.Response "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при принятии заявки"
// @Router /requests/accept [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.request.accept"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	receiverUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || receiverUID == "" {
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

	if err := h.service.Accept(r.Context(), req.RequesterUID, receiverUID); err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			log.Error("request not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("pending request not found"))
			return
		}
		log.Error("failed to accept request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not accept request"))
		return
	}

	log.Info("success to accept request", sl.UID(receiverUID))
	render.JSON(w, r, response.OK())
}
