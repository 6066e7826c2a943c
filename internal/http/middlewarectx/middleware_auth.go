// Package middlewarectx содержит HTTP middleware: проверку bearer-токена,
// ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware проверяет заголовок Authorization, передаёт токен
// аутентификатору и при успехе кладёт сводку пользователя в контекст запроса.
// Ошибки аутентификации дают 401, остальные ошибки дают 500 без подробностей.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/response"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

const bearerPrefix = "Bearer "

// Verifier описывает проверку токена сессии.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.UserSummary, error)
}

// JWTMiddleware возвращает middleware, пропускающее только запросы с действующим токеном.
func JWTMiddleware(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := BearerToken(r)
			if err == nil {
				var user *models.UserSummary
				user, err = verifier.Verify(r.Context(), token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(models.ContextWithUser(r.Context(), *user)))
					return
				}
			}

			status, resp := response.FromError(err)
			if status == http.StatusUnauthorized {
				log.Warn("unauthorized request", sl.Err(err))
			} else {
				log.Error("failed to verify token", sl.Err(err))
				status, resp = http.StatusInternalServerError, response.Error("internal error")
			}
			render.Status(r, status)
			render.JSON(w, r, resp)
		})
	}
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", models.ErrTokenMissing
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", models.ErrTokenMissing
	}
	return token, nil
}
