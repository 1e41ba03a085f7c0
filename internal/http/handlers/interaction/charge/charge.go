// Package charge реализует HTTP-обработчик расчёта за занятие.
//
// Handler проводит атомарный перевод токенов: ученик платит стоимость
// занятия, преподаватель получает награду. Учеником выступает
// аутентифицированный пользователь.
package charge

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
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
)

// Handler управляет HTTP-запросами на расчёт за занятие.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики учёта токенов.
type Service interface {
	ChargeInteraction(ctx context.Context, teacherUID, learnerUID, skill string) (int, error)
}

// Request тело запроса на расчёт за занятие.
type Request struct {
	TeacherUID string `json:"teacher_id" validate:"required,uuid"`
	Skill      string `json:"skill" validate:"required"`
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
// @Summary Рассчитаться за занятие
// @Description Списывает у ученика стоимость занятия и зачисляет награду преподавателю одной транзакцией.
// @Tags Tokens
// @Accept  json
// @Produce  json
// @Param request body Request true "Преподаватель и навык"
// @Success 200 {object} map[string]any "Списанная стоимость"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 402 {object} response.ErrorResponse "Недостаточно токенов"
// @Failure 404 {object} response.ErrorResponse "Пользователь или навык не найден"
// @Failure 409 {object} response.ErrorResponse "Навык не верифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при расчёте"
// @Router /interactions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.interaction.charge"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	learnerUID, ok := middlewarectx.UIDFromContext(r.Context())
	if !ok || learnerUID == "" {
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

	cost, err := h.service.ChargeInteraction(r.Context(), req.TeacherUID, learnerUID, req.Skill)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientBalance):
			log.Error("insufficient balance", sl.UID(learnerUID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("not enough tokens"))
		case errors.Is(err, ledger.ErrSkillNotVerified):
			log.Error("skill is not verified", slog.String("skill", req.Skill))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("teaching skill is not verified"))
		case errors.Is(err, ledger.ErrSkillNotFound), errors.Is(err, ledger.ErrUserNotFound):
			log.Error("user or skill not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user or skill not found"))
		default:
			log.Error("failed to charge interaction", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not charge interaction"))
		}
		return
	}

	log.Info("success to charge interaction",
		sl.UID(learnerUID),
		slog.String("teacher_uid", req.TeacherUID),
		slog.Int("cost", cost))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"cost": cost,
	}))
}
