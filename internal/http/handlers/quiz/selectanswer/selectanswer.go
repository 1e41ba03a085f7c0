// Package selectanswer реализует HTTP-обработчик выбора варианта ответа.
//
// Выбор можно менять до подтверждения или истечения времени раунда;
// по таймеру засчитывается последний выбранный вариант.
package selectanswer

import (
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

// Handler управляет HTTP-запросами на выбор варианта ответа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики верификации.
type Service interface {
	SelectAnswer(userUID string, option int) error
}

// Request тело запроса на выбор варианта.
type Request struct {
	Option *int `json:"option" validate:"required"`
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
// @Summary Выбрать вариант ответа
// @Description Запоминает выбранный вариант текущего раунда теста.
// @Tags Quiz
// @Accept  json
// @Produce  json
// @Param request body Request true "Индекс варианта"
// @Success 200 {object} response.Response "Вариант выбран"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или вариант вне диапазона"
// @Failure 404 {object} response.ErrorResponse "Активный тест не найден"
// @Failure 409 {object} response.ErrorResponse "Тест уже завершён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /quiz/select [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.selectanswer"
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

	if err := h.service.SelectAnswer(userUID, *req.Option); err != nil {
		switch {
		case errors.Is(err, verification.ErrNoActiveSession):
			log.Error("no active session", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active verification quiz"))
		case errors.Is(err, verification.ErrQuizFinished):
			log.Error("quiz already finished", sl.UID(userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("verification quiz is already finished"))
		case errors.Is(err, verification.ErrInvalidOption):
			log.Error("option out of range", sl.UID(userUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("selected option is out of range"))
		default:
			log.Error("failed to select answer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not select answer"))
		}
		return
	}

	log.Info("success to select answer", sl.UID(userUID), slog.Int("option", *req.Option))
	render.JSON(w, r, response.OK())
}
