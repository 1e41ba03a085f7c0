// Package answer реализует HTTP-обработчик подтверждения ответа.
//
// Подтверждение засчитывает выбранный вариант, останавливает таймер
// раунда и переводит тест дальше либо завершает его.
package answer

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

// Handler управляет HTTP-запросами на подтверждение ответа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики верификации.
type Service interface {
	SubmitAnswer(ctx context.Context, userUID string) (*verification.StatusView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить ответ
// @Description Засчитывает выбранный вариант и возвращает состояние теста после раунда.
// @Tags Quiz
// @Produce  json
// @Success 200 {object} verification.StatusView "Состояние теста"
// @Failure 404 {object} response.ErrorResponse "Активный тест не найден"
// @Failure 409 {object} response.ErrorResponse "Тест уже завершён или вопрос не готов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при подтверждении"
// @Router /quiz/answer [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.answer"
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

	status, err := h.service.SubmitAnswer(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrNoActiveSession):
			log.Error("no active session", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active verification quiz"))
		case errors.Is(err, verification.ErrQuizFinished):
			log.Error("quiz already finished", sl.UID(userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("verification quiz is already finished"))
		case errors.Is(err, verification.ErrQuestionPending):
			log.Error("question is not ready", sl.UID(userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("question for current round is not ready"))
		default:
			log.Error("failed to submit answer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not submit answer"))
		}
		return
	}

	log.Info("success to submit answer",
		sl.UID(userUID),
		slog.Int("round", status.Round),
		slog.Bool("finished", status.Finished))
	render.JSON(w, r, response.StatusOKWithData(status))
}
