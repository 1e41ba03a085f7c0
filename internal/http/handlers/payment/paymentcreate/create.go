// Package paymentcreate реализует HTTP-обработчик создания заказа на оплату
// подписки. Сумма и идентификатор заказа задаются сервером, клиент получает
// платёжную сессию провайдера.
package paymentcreate

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
	"github.com/magabrotheeeer/skillswap/internal/services/payment"
)

// Handler управляет HTTP-запросами на создание заказов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	CreateOrder(ctx context.Context, userUID string) (*payment.CreateOrderResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать заказ на оплату подписки
// @Description Регистрирует заказ у платёжного провайдера и возвращает платёжную сессию.
// @Tags Payments
// @Produce  json
// @Success 200 {object} payment.CreateOrderResult "Платёжная сессия"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании заказа"
// @Router /pay/createOrder [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"
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

	result, err := h.service.CreateOrder(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, payment.ErrUserNotFound) {
			log.Error("user not found", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create order"))
		return
	}

	log.Info("success to create order", sl.UID(userUID), slog.String("order_id", result.OrderID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
