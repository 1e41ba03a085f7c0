// Package add реализует HTTP-обработчик зачисления токенов.
//
// Handler доступен только администратору: начисления за регистрацию,
// верификацию и занятия выполняются сервером автоматически, ручное
// зачисление служит для корректировок.
package add

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

// Handler управляет HTTP-запросами на зачисление токенов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики учёта токенов.
type Service interface {
	Credit(ctx context.Context, userUID string, amount int) error
	Balance(ctx context.Context, userUID string) (int, error)
}

// Request тело запроса на зачисление токенов.
type Request struct {
	UserUID string `json:"user_id" validate:"required,uuid"`
	Amount  int    `json:"amount" validate:"required,gt=0"`
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
// @Summary Зачислить токены
// @Description Зачисляет токены на баланс пользователя. Только для администратора.
// @Tags Tokens
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и сумма"
// @Success 200 {object} map[string]any "Новый баланс"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при зачислении"
// @Router /add-tokens [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.token.add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != "admin" {
		log.Error("non-admin attempt to add tokens")
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

	if err := h.service.Credit(r.Context(), req.UserUID, req.Amount); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			log.Error("user not found", sl.UID(req.UserUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to credit tokens", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not credit tokens"))
		return
	}

	balance, err := h.service.Balance(r.Context(), req.UserUID)
	if err != nil {
		log.Error("failed to read balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read balance"))
		return
	}

	log.Info("success to credit tokens", sl.UID(req.UserUID), slog.Int("amount", req.Amount))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tokens": balance,
	}))
}
