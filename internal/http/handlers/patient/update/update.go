// Package update реализует HTTP-обработчик частичного обновления карточки.
// Поля, отсутствующие в теле запроса, не меняются.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Handler обрабатывает запросы на обновление карточки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику обновления карточки.
type Service interface {
	Update(ctx context.Context, id string, patch models.PatientPatch) (*models.Patient, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обновление карточки
// @Description Меняет только переданные поля. Статус через этот метод не меняется.
// @Tags Patients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "UUID карточки"
// @Param request body models.PatientPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Patient}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или дубликат"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Router /patients/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var patch models.PatientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.Fail(w, r, log, "failed to update patient", err)
		return
	}

	log.Info("patient updated", slog.String("id", p.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(p))
}
