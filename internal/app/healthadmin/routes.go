package healthadmin

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрирует OpenAPI-документ для /docs.
	_ "github.com/magabrotheeeer/healthadmin-lite/docs"
	"github.com/magabrotheeeer/healthadmin-lite/internal/config"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/health"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/create"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/export"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/list"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/read"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/remove"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/stats"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/handlers/patient/update"
	"github.com/magabrotheeeer/healthadmin-lite/internal/http/middlewarectx"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
	"github.com/magabrotheeeer/healthadmin-lite/internal/services/auth"
)

// AuthService — аутентификатор, нужный маршрутам.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Verify(ctx context.Context, token string) (*models.UserSummary, error)
}

// PatientService — операции над карточками, нужные маршрутам.
type PatientService interface {
	List(ctx context.Context, f models.PatientFilter) (*models.PatientPage, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	Create(ctx context.Context, in models.PatientInput) (*models.Patient, error)
	Update(ctx context.Context, id string, patch models.PatientPatch) (*models.Patient, error)
	SoftDelete(ctx context.Context, id string) (*models.Patient, error)
	Stats(ctx context.Context) (*models.PatientStats, error)
	Export(ctx context.Context, search string, w io.Writer) error
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, limits config.RateLimit, authService AuthService, patientService PatientService, db health.Pinger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
	)

	// Открытые конечные точки
	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.With(middlewarectx.RateLimitMiddleware(logger, limits.RPS, limits.Burst)).
		Post("/auth/login", login.New(logger, authService).ServeHTTP)
	r.Post("/auth/verify", verify.New(logger, authService).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Get("/patients", list.New(logger, patientService).ServeHTTP)
		r.Post("/patients", create.New(logger, patientService).ServeHTTP)
		r.Get("/patients/stats", stats.New(logger, patientService).ServeHTTP)
		r.Get("/patients/export", export.New(logger, patientService).ServeHTTP)
		r.Get("/patients/{id}", read.New(logger, patientService).ServeHTTP)
		r.Put("/patients/{id}", update.New(logger, patientService).ServeHTTP)
		r.Delete("/patients/{id}", remove.New(logger, patientService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
