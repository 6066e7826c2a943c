// Package validate настраивает go-playground/validator под JSON-имена полей
// и переводит его ошибки в сообщения для клиента.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

var phoneRe = regexp.MustCompile(`^[0-9]{7,10}$`)

// New возвращает валидатор, который называет поля по тегу json
// и знает правило phone (7–10 цифр).
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}

// Struct проверяет s и возвращает по одному сообщению на невалидное поле.
// Пустой результат означает, что структура корректна.
func Struct(v *validator.Validate, s any) []models.FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "", Message: err.Error()}}
	}
	return Messages(verrs)
}

// Messages переводит ошибки валидатора в человеко-читаемые сообщения.
func Messages(errs validator.ValidationErrors) []models.FieldError {
	out := make([]models.FieldError, 0, len(errs))
	for _, err := range errs {
		field := fieldPath(err)
		out = append(out, models.FieldError{Field: field, Message: message(field, err)})
	}
	return out
}

func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func message(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(err.Param()), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must contain 7 to 10 digits", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}
