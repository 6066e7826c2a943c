// Package login реализует HTTP-обработчик входа по email и паролю.
//
// Обработчик декодирует JSON, проверяет наличие полей и делегирует проверку
// учётных данных аутентификатору. При успехе возвращает JWT и сводку пользователя.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/metrics"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/validate"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
	"github.com/magabrotheeeer/healthadmin-lite/internal/services/auth"
)

// Request — учётные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает аутентификатор.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход в систему
// @Description Проверяет email и пароль. Возвращает JWT на 24 часа и сводку пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=auth.LoginResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные или неактивный аккаунт"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if fields := validate.Struct(h.validate, req); len(fields) > 0 {
		log.Warn("validation failed", slog.Int("fields", len(fields)))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(fields))
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) || errors.Is(err, models.ErrAccountInactive) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		}
		response.Fail(w, r, log, "login failed", err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info("login success", slog.String("user_id", res.User.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(res))
}
