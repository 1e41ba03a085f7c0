// Package list реализует HTTP-обработчик подбора собеседников.
//
// Handler извлекает идентификатор пользователя из пути, вызывает подбор
// через сервис и возвращает профиль запрашивающего вместе с ранжированным
// списком кандидатов.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/match"
)

// Handler управляет HTTP-запросами на подбор собеседников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подбора.
type Service interface {
	FindMatches(ctx context.Context, userUID string) (*models.MatchResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подобрать собеседников
// @Description Возвращает профиль пользователя и кандидатов с двусторонним совпадением навыков.
// @Tags Match
// @Produce  json
// @Param userId path string true "Идентификатор пользователя"
// @Success 200 {object} models.MatchResult "Результат подбора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при подборе"
// @Router /match/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.match.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")
	if userUID == "" {
		log.Error("missing userId path parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing userId"))
		return
	}

	result, err := h.service.FindMatches(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, match.ErrUserNotFound) {
			log.Error("user not found", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to find matches", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find matches"))
		return
	}

	log.Info("success to find matches",
		sl.UID(userUID),
		slog.Int("count", len(result.MatchedUsers)))
	render.JSON(w, r, result)
}
