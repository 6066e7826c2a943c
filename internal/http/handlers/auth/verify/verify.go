// Package verify реализует проверку текущей сессии по bearer-токену.
package verify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/middlewarectx"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Handler возвращает пользователя, которому выдан токен.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает проверку токена.
type Service interface {
	Verify(ctx context.Context, token string) (*models.UserSummary, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверка сессии
// @Description Проверяет bearer-токен и возвращает данные пользователя.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.UserSummary}
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует, неверен или истёк"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, err := middlewarectx.BearerToken(r)
	if err != nil {
		response.Fail(w, r, log, "missing bearer token", err)
		return
	}

	user, err := h.service.Verify(r.Context(), token)
	if err != nil {
		response.Fail(w, r, log, "token verification failed", err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(user))
}
