// Package export реализует выгрузку карточек пациентов в CSV.
package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
)

const fileName = "patients.csv"

// Handler отдаёт CSV-файл со всеми карточками, подходящими под поиск.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выгрузку карточек.
type Service interface {
	Export(ctx context.Context, search string, w io.Writer) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузка в CSV
// @Tags Patients
// @Produce  text/csv
// @Security BearerAuth
// @Param search query string false "Поиск по имени, фамилии или номеру документа"
// @Success 200 {string} string "CSV-файл"
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /patients/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Ответ пишется только после полной выгрузки.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), r.URL.Query().Get("search"), &buf); err != nil {
		response.Fail(w, r, log, "failed to export patients", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write export", sl.Err(err))
	}
}
