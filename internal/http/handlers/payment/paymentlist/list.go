// Package paymentlist реализует HTTP-обработчик списка заказов пользователя.
package paymentlist

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

// Handler управляет HTTP-запросами на список заказов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	ListOrders(ctx context.Context, userUID string) ([]*models.Order, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список заказов пользователя
// @Description Возвращает заказы на оплату подписки, новые первыми. Доступны только собственные заказы.
// @Tags Payments
// @Produce  json
// @Param userId path string true "Идентификатор пользователя"
// @Success 200 {object} map[string]any "Заказы пользователя"
// @Failure 403 {object} response.ErrorResponse "Чужие заказы"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении заказов"
// @Router /pay/user/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")
	authUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || authUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if authUID != userUID && role != "admin" {
		log.Error("attempt to read another user orders", sl.UID(authUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("cannot read another user's orders"))
		return
	}

	result, err := h.service.ListOrders(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list orders"))
		return
	}

	log.Info("success to list orders", sl.UID(userUID), slog.Int("count", len(result)))
	render.JSON(w, r, response.StatusOKWithData(result))
}
