// Package create реализует HTTP-обработчик регистрации новой карточки пациента.
//
// Тело запроса проверяется сервисом: при ошибках возвращается 400 со списком
// полей, при совпадении номера документа или email возвращается 400 с конфликтующим полем.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Handler обрабатывает запросы на создание карточки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику создания карточки.
type Service interface {
	Create(ctx context.Context, in models.PatientInput) (*models.Patient, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пациента
// @Tags Patients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.PatientInput true "Данные карточки"
// @Success 201 {object} response.Response{data=models.Patient}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или дубликат"
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /patients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, "failed to create patient", err)
		return
	}

	log.Info("patient created", slog.String("id", p.ID.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(p))
}
