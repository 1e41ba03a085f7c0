// Package connections реализует HTTP-обработчик списка соединений пользователя.
package connections

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/request"
)

// Handler управляет HTTP-запросами на список соединений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики заявок.
type Service interface {
	ListConnections(ctx context.Context, userUID string) ([]*models.ProfileSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список соединений
// @Description Возвращает профили пользователей, соединённых с текущим, вместе с их навыками.
// @Tags Requests
// @Produce  json
// @Success 200 {object} map[string]any "Соединения пользователя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении соединений"
// @Router /connections [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.request.connections"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.ListConnections(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, request.ErrUserNotFound) {
			log.Error("user not found", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to list connections", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list connections"))
		return
	}

	log.Info("success to list connections", sl.UID(userUID), slog.Int("count", len(result)))
	render.JSON(w, r, response.StatusOKWithData(result))
}
