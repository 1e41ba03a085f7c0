// Package start реализует HTTP-обработчик начала теста верификации навыка.
package start

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
	"github.com/magabrotheeeer/skillswap/internal/services/verification"
)

// Handler управляет HTTP-запросами на начало теста.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики верификации.
type Service interface {
	Start(ctx context.Context, userUID, skill string) (*verification.RoundView, error)
}

// Request тело запроса на начало теста.
type Request struct {
	Skill string `json:"skill" validate:"required"`
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
// @Summary Начать тест верификации
// @Description Начинает тест по навыку обучения текущего пользователя и возвращает первый вопрос.
// @Tags Quiz
// @Accept  json
// @Produce  json
// @Param request body Request true "Навык для верификации"
// @Success 200 {object} verification.RoundView "Первый вопрос"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Навык не найден"
// @Failure 409 {object} response.ErrorResponse "Навык уже верифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при начале теста"
// @Router /quiz/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.start"
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

	round, err := h.service.Start(r.Context(), userUID, req.Skill)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrSkillNotFound):
			log.Error("skill not found", sl.UID(userUID), slog.String("skill", req.Skill))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("teaching skill not found"))
		case errors.Is(err, verification.ErrAlreadyVerified):
			log.Error("skill already verified", sl.UID(userUID), slog.String("skill", req.Skill))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("teaching skill is already verified"))
		default:
			log.Error("failed to start quiz", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start quiz"))
		}
		return
	}

	log.Info("success to start quiz", sl.UID(userUID), slog.String("skill", req.Skill))
	render.JSON(w, r, response.StatusOKWithData(round))
}
