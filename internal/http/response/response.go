// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (при неуспехе).
// Поле Fields — ошибки по отдельным полям (при неуспешной валидации).
// Поле Data — данные ответа (при успехе).
type Response struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Fields []models.FieldError `json:"fields,omitempty"`
	Data   any                 `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string              `json:"status" example:"Error"`
	Error  string              `json:"error" example:"invalid request body"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует ответ со списком ошибок по полям.
func ValidationError(fields []models.FieldError) Response {
	return Response{
		Status: StatusError,
		Error:  (&models.ValidationError{Fields: fields}).Error(),
		Fields: fields,
	}
}

// Pagination описывает параметры страницы в ответе списка.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// PageOf собирает данные ответа списка карточек.
func PageOf(p *models.PatientPage) map[string]any {
	records := p.Records
	if records == nil {
		records = []*models.Patient{}
	}
	return map[string]any{
		"records": records,
		"pagination": Pagination{
			Total: p.Total,
			Page:  p.Page,
			Limit: p.Limit,
			Pages: p.Pages,
		},
	}
}

// FromError сопоставляет ошибку сервиса с HTTP-статусом и телом ответа.
// Неизвестные ошибки превращаются в 500 без подробностей.
func FromError(err error) (int, Response) {
	var verr *models.ValidationError
	var derr *models.DuplicateKeyError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ValidationError(verr.Fields)
	case errors.As(err, &derr):
		resp := Error(derr.Error())
		if derr.Field != "" {
			resp.Fields = []models.FieldError{{Field: derr.Field, Message: derr.Field + " already exists"}}
		}
		return http.StatusBadRequest, resp
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusBadRequest, Error(models.ErrDuplicateKey.Error())
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("patient not found")
	case errors.Is(err, models.ErrTokenMissing):
		return http.StatusUnauthorized, Error("missing or invalid authorization header")
	case errors.Is(err, models.ErrTokenExpired):
		return http.StatusUnauthorized, Error("token expired")
	case errors.Is(err, models.ErrTokenInvalid):
		return http.StatusUnauthorized, Error("invalid token")
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusUnauthorized, Error("user not found")
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("invalid credentials")
	case errors.Is(err, models.ErrAccountInactive):
		return http.StatusUnauthorized, Error("account inactive")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// Fail пишет ответ с ошибкой. Клиентские ошибки логируются как предупреждения,
// внутренние как ошибки.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	status, resp := FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
	} else {
		log.Warn(msg, sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
