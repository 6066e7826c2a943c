// Package stats реализует HTTP-обработчик сводной статистики по карточкам.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Stats(ctx context.Context) (*models.PatientStats, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика по пациентам
// @Description Количество карточек по статусу, а для активных ещё по полу и группе крови.
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.PatientStats}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /patients/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, err := h.service.Stats(r.Context())
	if err != nil {
		response.Fail(w, r, log, "failed to compute patient stats", err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(s))
}
