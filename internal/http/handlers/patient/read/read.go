// Package read реализует HTTP-обработчик получения карточки пациента по ID.
package read

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

// Handler обрабатывает запросы на получение карточки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику чтения карточки.
type Service interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточка пациента
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param id path string true "UUID карточки"
// @Success 200 {object} response.Response{data=models.Patient}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Router /patients/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, "failed to read patient", err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(p))
}
