// Package remove реализует мягкое удаление карточки: статус меняется на inactive,
// запись остаётся доступной для чтения.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Handler обрабатывает запросы на деактивацию карточки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику мягкого удаления.
type Service interface {
	SoftDelete(ctx context.Context, id string) (*models.Patient, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Деактивация карточки
// @Description Переводит карточку в статус inactive. Повторный вызов завершается успешно.
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param id path string true "UUID карточки"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Router /patients/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, "failed to deactivate patient", err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "patient deactivated",
		"id":      p.ID,
		"status":  p.Status,
	}))
}
