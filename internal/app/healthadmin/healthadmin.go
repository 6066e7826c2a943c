// Package healthadmin собирает HTTP-сервис HealthAdmin Lite: хранилище,
// миграции, кэш, публикацию событий, сервисы и маршруты.
package healthadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/healthadmin-lite/internal/cache"
	"github.com/magabrotheeeer/healthadmin-lite/internal/config"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/jwt"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/migrations"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
	authservice "github.com/magabrotheeeer/healthadmin-lite/internal/services/auth"
	patientservice "github.com/magabrotheeeer/healthadmin-lite/internal/services/patient"
	"github.com/magabrotheeeer/healthadmin-lite/internal/storage/repository"
)

const (
	connectRetries  = 5
	connectDelay    = 2 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App — HTTP-сервер со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	pool    *pgxpool.Pool
	closers []io.Closer
}

// New подключается к зависимостям, применяет миграции и создаёт администратора.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "healthadmin.New"

	pool, err := repository.Connect(ctx, cfg.StorageConnectionString, connectRetries, connectDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, pool: pool}

	if err = migrations.RunWithPool(pool, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))

	storage := repository.NewStorage(pool)
	authService := authservice.NewService(storage, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL))

	if err = ensureAdmin(ctx, authService, cfg.BootstrapAdmin, logger); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := []patientservice.Option{}
	if cfg.Redis.Enabled {
		cacheRedis, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, cacheRedis)
		opts = append(opts, patientservice.WithCache(cacheRedis, cfg.Redis.PatientTTL))
		logger.Info("patient cache enabled", slog.Duration("ttl", cfg.Redis.PatientTTL))
	}

	if cfg.RabbitMQ.Enabled {
		publisher, err := newPublisher(ctx, cfg.RabbitMQ, app)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, patientservice.WithPublisher(publisher))
		logger.Info("patient events enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	patientService := patientservice.NewService(storage, logger, opts...)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimit, authService, patientService, storage)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func newPublisher(ctx context.Context, cfg config.RabbitMQ, app *App) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.URL, connectRetries, connectDelay)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, conn)

	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetPatientQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, cfg.Exchange)
	// Канал закрывается раньше соединения.
	app.closers = append([]io.Closer{publisher}, app.closers...)
	return publisher, nil
}

// ensureAdmin создаёт администратора из конфигурации, если пользователя с таким email ещё нет.
func ensureAdmin(ctx context.Context, svc *authservice.Service, admin config.BootstrapAdmin, logger *slog.Logger) error {
	if admin.Email == "" {
		return nil
	}
	user, created, err := svc.EnsureUser(ctx, admin.Name, admin.Email, admin.Password, models.RoleAdmin)
	if err != nil {
		return err
	}
	if created {
		logger.Info("bootstrap admin created", slog.String("email", user.Email))
	}
	return nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
