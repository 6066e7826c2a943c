// Package list реализует HTTP-обработчик списка карточек пациентов
// с пагинацией и поиском по имени, фамилии или номеру документа.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Handler обрабатывает запросы списка карточек.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику получения страницы карточек.
type Service interface {
	List(ctx context.Context, f models.PatientFilter) (*models.PatientPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пациентов
// @Description Возвращает страницу карточек, новые первыми. Некорректные page и limit заменяются значениями по умолчанию, limit не больше 100.
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param search query string false "Поиск по имени, фамилии или номеру документа"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /patients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	f := models.PatientFilter{
		Page:   atoiOrZero(q.Get("page")),
		Limit:  atoiOrZero(q.Get("limit")),
		Search: q.Get("search"),
	}

	page, err := h.service.List(r.Context(), f)
	if err != nil {
		response.Fail(w, r, log, "failed to list patients", err)
		return
	}

	log.Debug("patients listed", slog.Int("count", len(page.Records)), slog.Int("total", page.Total))
	render.JSON(w, r, response.StatusOKWithData(response.PageOf(page)))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
