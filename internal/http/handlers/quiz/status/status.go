// Package status реализует HTTP-обработчик состояния теста верификации.
//
// Handler возвращает счёт и текущий раунд; если вопрос раунда не был
// получен из-за сбоя генератора, запрос повторяется.
package status

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
	"github.com/magabrotheeeer/skillswap/internal/services/verification"
)

// Handler управляет HTTP-запросами на состояние теста.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики верификации.
type Service interface {
	Status(ctx context.Context, userUID string) (*verification.StatusView, error)
	CurrentRound(ctx context.Context, userUID string) (*verification.RoundView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние теста
// @Description Возвращает счёт и, для незавершённого теста, вопрос текущего раунда.
// @Tags Quiz
// @Produce  json
// @Success 200 {object} map[string]any "Состояние теста и текущий вопрос"
// @Failure 404 {object} response.ErrorResponse "Активный тест не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении состояния"
// @Router /quiz/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.status"
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

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, verification.ErrNoActiveSession) {
			log.Error("no active session", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active verification quiz"))
			return
		}
		log.Error("failed to read quiz status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read quiz status"))
		return
	}

	data := map[string]any{"status": status}
	if !status.Finished {
		round, err := h.service.CurrentRound(r.Context(), userUID)
		if err == nil {
			data["round"] = round
		} else if !errors.Is(err, verification.ErrQuestionPending) {
			log.Warn("failed to read current round", sl.Err(err))
		}
	}

	log.Info("success to read quiz status", sl.UID(userUID), slog.Int("round", status.Round))
	render.JSON(w, r, response.StatusOKWithData(data))
}
