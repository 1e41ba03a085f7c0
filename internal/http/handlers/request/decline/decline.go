// Package decline реализует HTTP-обработчик отклонения заявки на соединение.
package decline

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

// Handler управляет HTTP-запросами на отклонение заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики заявок.
type Service interface {
	Decline(ctx context.Context, requesterUID, receiverUID string) error
}

// Request тело запроса на отклонение заявки.
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
// @Summary Отклонить заявку на соединение
// @Description Отклоняет входящую заявку без создания соединения.
// @Tags Requests
// @Accept  json
// @Produce  json
// @Param request body Request true "Отправитель заявки"
// @Success 200 {object} response.Response "Заявка отклонена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отклонении заявки"
// @Router /requests/decline [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.request.decline"
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

	if err := h.service.Decline(r.Context(), req.RequesterUID, receiverUID); err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			log.Error("request not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("pending request not found"))
			return
		}
		log.Error("failed to decline request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not decline request"))
		return
	}

	log.Info("success to decline request", sl.UID(receiverUID))
	render.JSON(w, r, response.OK())
}
