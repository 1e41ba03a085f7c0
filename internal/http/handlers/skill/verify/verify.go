// Package verify реализует HTTP-обработчик ручной верификации навыка.
//
// Handler доступен только администратору: помечает навык обучения
// пользователя верифицированным и зачисляет награду одной транзакцией.
// Обычный путь верификации — тест, этот обработчик служит обходом.
package verify

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
	"github.com/magabrotheeeer/skillswap/internal/services/skills"
)

// Handler управляет HTTP-запросами на ручную верификацию навыков.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики верификации навыка.
type Service interface {
	Verify(ctx context.Context, userUID, skill string) error
}

// Request тело запроса на верификацию навыка.
type Request struct {
	UserUID string `json:"user_id" validate:"required,uuid"`
	Skill   string `json:"skill" validate:"required"`
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
// @Summary Верифицировать навык вручную
// @Description Помечает навык обучения верифицированным и зачисляет награду. Только для администратора.
// @Tags Skills
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и навык"
// @Success 200 {object} response.Response "Навык верифицирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Навык не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при верификации"
// @Router /verify-teaching-skill [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.skill.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != "admin" {
		log.Error("non-admin attempt to verify skill")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("admin role required"))
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

	if err := h.service.Verify(r.Context(), req.UserUID, req.Skill); err != nil {
		if errors.Is(err, skills.ErrSkillNotFound) {
			log.Error("skill not found", sl.UID(req.UserUID), slog.String("skill", req.Skill))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("teaching skill not found"))
			return
		}
		log.Error("failed to verify skill", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify skill"))
		return
	}

	log.Info("success to verify skill", sl.UID(req.UserUID), slog.String("skill", req.Skill))
	render.JSON(w, r, response.OK())
}
