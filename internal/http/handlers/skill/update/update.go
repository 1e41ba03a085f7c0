// Package update реализует HTTP-обработчик замены списков навыков пользователя.
//
// Handler принимает JSON-запрос с новыми списками навыков, валидирует их
// и вызывает бизнес-логику замены. Менять можно только собственные навыки.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/skills"
)

// Handler управляет HTTP-запросами на замену навыков.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики управления навыками.
type Service interface {
	Update(ctx context.Context, userUID string, teach []models.DummyTeachSkill, learn []models.DummyLearnSkill) error
}

// Request тело запроса на замену навыков.
type Request struct {
	SkillsToTeach []models.DummyTeachSkill `json:"skills_to_teach" validate:"dive"`
	SkillsToLearn []models.DummyLearnSkill `json:"skills_to_learn" validate:"dive"`
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
// @Summary Заменить списки навыков
// @Description Полностью заменяет навыки обучения и изучения пользователя. Верификация сохраняется по имени навыка.
// @Tags Skills
// @Accept  json
// @Produce  json
// @Param userId path string true "Идентификатор пользователя"
// @Param request body Request true "Новые списки навыков"
// @Success 200 {object} response.Response "Навыки заменены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужой профиль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при замене навыков"
// @Router /users/{userId}/skills [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.skill.update"
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
	if authUID != userUID {
		log.Error("attempt to edit another user skills", sl.UID(authUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("cannot edit another user's skills"))
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

	if err := h.service.Update(r.Context(), userUID, req.SkillsToTeach, req.SkillsToLearn); err != nil {
		if errors.Is(err, skills.ErrUserNotFound) {
			log.Error("user not found", sl.UID(userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update skills", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update skills"))
		return
	}

	log.Info("success to update skills", sl.UID(userUID))
	render.JSON(w, r, response.OK())
}
