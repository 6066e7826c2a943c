// Package repository реализует хранилище на PostgreSQL для учётных записей
// операторов и карточек пациентов.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL при нарушении уникального индекса.
const uniqueViolation = "23505"

// Имена уникальных ограничений и поля, которые они защищают.
var uniqueConstraintFields = map[string]string{
	"patients_document_number_key": "documentNumber",
	"patients_email_key":           "email",
	"users_email_key":              "email",
}

// PgxPool — методы пула соединений, которые использует хранилище.
// Реализуется *pgxpool.Pool и pgxmock.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage реализует методы работы с пользователями и пациентами.
type Storage struct {
	pool PgxPool
}

// NewStorage создаёт хранилище поверх пула.
func NewStorage(pool PgxPool) *Storage {
	return &Storage{pool: pool}
}

// Connect создаёт пул соединений и проверяет доступность базы,
// повторяя попытку retries раз.
func Connect(ctx context.Context, connString string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	const op = "storage.Connect"

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if retries < 1 {
		retries = 1
	}
	for attempt := range retries {
		if err = pool.Ping(ctx); err == nil {
			return pool, nil
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	pool.Close()
	return nil, fmt.Errorf("%s: %w", op, err)
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// mapWriteError переводит нарушение уникального индекса в models.DuplicateKeyError.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &models.DuplicateKeyError{Field: uniqueConstraintFields[pgErr.ConstraintName]}
	}
	return err
}
