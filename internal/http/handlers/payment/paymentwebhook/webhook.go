// Package paymentwebhook реализует HTTP-обработчик webhook-уведомлений
// платёжного провайдера. Маршрут открытый: провайдер не проходит JWT,
// запрос проверяется по содержимому.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/paymentprovider"
	"github.com/magabrotheeeer/skillswap/internal/services/payment"
)

// Handler управляет webhook-уведомлениями провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	HandleWebhook(ctx context.Context, payload paymentprovider.WebhookPayload) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает уведомление о результате оплаты и активирует подписку при успехе.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body paymentprovider.WebhookPayload true "Уведомление провайдера"
// @Success 200 {object} response.Response "Уведомление обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректное уведомление"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обработке уведомления"
// @Router /pay/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentwebhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var payload paymentprovider.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error("failed to decode webhook", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook body"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidWebhook):
			log.Error("invalid webhook payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid webhook payload"))
		case errors.Is(err, payment.ErrOrderNotFound):
			log.Error("order not found", slog.String("order_id", payload.Data.Order.OrderID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
		default:
			log.Error("failed to handle webhook", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not handle webhook"))
		}
		return
	}

	log.Info("success to handle webhook", slog.String("order_id", payload.Data.Order.OrderID))
	render.JSON(w, r, response.OK())
}
