// Package patient содержит бизнес-логику работы с карточками пациентов:
// список с поиском, чтение через кэш, создание, частичное обновление,
// мягкое удаление, статистику и выгрузку в CSV.
package patient

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/healthadmin-lite/internal/cache"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

// Repository описывает хранилище карточек пациентов.
type Repository interface {
	CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, u models.PatientUpdate) (*models.Patient, error)
	DeactivatePatient(ctx context.Context, id uuid.UUID) (*models.Patient, bool, error)
	ListPatients(ctx context.Context, f models.PatientFilter) ([]*models.Patient, int, error)
	PatientStats(ctx context.Context) (*models.PatientStats, error)
}

// Cache описывает кэш карточек.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Publisher публикует события жизненного цикла карточек.
type Publisher interface {
	PublishPatientEvent(ctx context.Context, event models.PatientEvent) error
}

// Service реализует операции над карточками пациентов.
type Service struct {
	repo      Repository
	cache     Cache
	cacheTTL  time.Duration
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
	writes    writeTracker
}

// writeTracker учитывает записи карточек, чтобы GetByID не положил в кэш
// версию, прочитанную до завершения записи.
type writeTracker struct {
	mu       sync.Mutex
	inFlight int
	epoch    uint64
}

func (t *writeTracker) begin() {
	t.mu.Lock()
	t.inFlight++
	t.mu.Unlock()
}

func (t *writeTracker) end() {
	t.mu.Lock()
	t.inFlight--
	t.epoch++
	t.mu.Unlock()
}

func (t *writeTracker) snapshot() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// fillIf вызывает fill, только если с момента snapshot не было и нет записей.
func (t *writeTracker) fillIf(epoch uint64, fill func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight > 0 || t.epoch != epoch {
		return false
	}
	fill()
	return true
}

// Option настраивает Service.
type Option func(*Service)

// WithCache включает кэширование карточек на ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher включает публикацию событий.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт сервис карточек пациентов.
func NewService(repo Repository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает страницу карточек. Некорректные page и limit заменяются значениями по умолчанию.
func (s *Service) List(ctx context.Context, f models.PatientFilter) (*models.PatientPage, error) {
	const op = "patient.List"
	f = f.Normalize()

	records, total, err := s.repo.ListPatients(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PatientPage{
		Records: records,
		Total:   total,
		Page:    f.Page,
		Limit:   f.Limit,
		Pages:   models.PageCount(total, f.Limit),
	}, nil
}

// GetByID возвращает карточку по идентификатору. Некорректный идентификатор даёт ErrNotFound.
func (s *Service) GetByID(ctx context.Context, rawID string) (*models.Patient, error) {
	const op = "patient.GetByID"
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	key := cache.PatientKey(id.String())
	if s.cache != nil {
		var cached models.Patient
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read patient from cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	epoch := s.writes.snapshot()
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil && !s.writes.fillIf(epoch, func() { s.cachePatient(ctx, p) }) {
		s.log.Debug("skip caching patient read during write", slog.String("id", id.String()))
	}
	return p, nil
}

// Create проверяет данные и сохраняет новую активную карточку.
func (s *Service) Create(ctx context.Context, in models.PatientInput) (*models.Patient, error) {
	const op = "patient.Create"

	in = Normalize(in)
	if fields := Validate(in, s.now()); len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &models.ValidationError{Fields: fields})
	}
	birth, _ := time.Parse(models.DateLayout, in.BirthDate)

	p := &models.Patient{
		ID:             uuid.New(),
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		FirstNames:     in.FirstNames,
		LastNames:      in.LastNames,
		BirthDate:      birth,
		Gender:         in.Gender,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		City:           in.City,
		HealthProvider: in.HealthProvider,
		BloodType:      in.BloodType,
		Allergies:      in.Allergies,
		EmergencyContact: models.EmergencyContact{
			Name:         in.EmergencyContact.Name,
			Phone:        in.EmergencyContact.Phone,
			Relationship: in.EmergencyContact.Relationship,
		},
		Status: models.StatusActive,
	}

	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// После фиксации записи отмена запроса не должна прерывать кэш и публикацию.
	sideCtx := context.WithoutCancel(ctx)
	s.log.Info("patient created", slog.String("id", created.ID.String()))
	s.cachePatient(sideCtx, created)
	s.publish(sideCtx, models.EventPatientCreated, created)
	return created, nil
}

// Update меняет только переданные поля. Итоговая карточка проверяется по тем же правилам, что и при создании.
func (s *Service) Update(ctx context.Context, rawID string, patch models.PatientPatch) (*models.Patient, error) {
	const op = "patient.Update"
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	existing, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	patch = normalizePatch(patch)
	if isEmptyPatch(patch) {
		return existing, nil
	}
	merged := Normalize(applyPatch(existing.Input(), patch))
	if fields := Validate(merged, s.now()); len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &models.ValidationError{Fields: fields})
	}
	birth, _ := time.Parse(models.DateLayout, merged.BirthDate)

	sideCtx := context.WithoutCancel(ctx)
	s.beginWrite(ctx, id)
	updated, err := s.repo.UpdatePatient(ctx, id, toUpdate(patch, birth))
	s.endWrite(sideCtx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("patient updated", slog.String("id", updated.ID.String()))
	s.publish(sideCtx, models.EventPatientUpdated, updated)
	return updated, nil
}

// SoftDelete переводит карточку в статус inactive. Повторный вызов для
// неактивной карточки завершается успешно и ничего не меняет.
func (s *Service) SoftDelete(ctx context.Context, rawID string) (*models.Patient, error) {
	const op = "patient.SoftDelete"
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	sideCtx := context.WithoutCancel(ctx)
	s.beginWrite(ctx, id)
	p, changed, err := s.repo.DeactivatePatient(ctx, id)
	s.endWrite(sideCtx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if changed {
		s.log.Info("patient deactivated", slog.String("id", id.String()))
		s.publish(sideCtx, models.EventPatientDeactivated, p)
	}
	return p, nil
}

// Stats возвращает агрегаты по карточкам.
func (s *Service) Stats(ctx context.Context) (*models.PatientStats, error) {
	const op = "patient.Stats"
	stats, err := s.repo.PatientStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// ExportHeader — заголовок CSV-выгрузки.
var ExportHeader = []string{"documentNumber", "firstNames", "lastNames", "phone", "email", "healthProvider", "status"}

// Export пишет в w все карточки, подходящие под search, новые первыми.
func (s *Service) Export(ctx context.Context, search string, w io.Writer) error {
	const op = "patient.Export"

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f := models.PatientFilter{Page: 1, Limit: models.MaxLimit, Search: search}
	for {
		records, total, err := s.repo.ListPatients(ctx, f)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, p := range records {
			row := []string{p.DocumentNumber, p.FirstNames, p.LastNames, p.Phone, p.Email, p.HealthProvider, string(p.Status)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		if len(records) < f.Limit || f.Page*f.Limit >= total {
			break
		}
		f.Page++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// beginWrite сбрасывает кэш карточки до записи и запрещает его заполнение до endWrite.
func (s *Service) beginWrite(ctx context.Context, id uuid.UUID) {
	s.writes.begin()
	s.invalidate(ctx, id)
}

// endWrite сбрасывает кэш повторно; вызывается и при ошибке записи.
func (s *Service) endWrite(ctx context.Context, id uuid.UUID) {
	s.invalidate(ctx, id)
	s.writes.end()
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := cache.PatientKey(id.String())
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate patient cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) cachePatient(ctx context.Context, p *models.Patient) {
	if s.cache == nil {
		return
	}
	key := cache.PatientKey(p.ID.String())
	if err := s.cache.Set(ctx, key, p, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache patient", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType string, p *models.Patient) {
	if s.publisher == nil {
		return
	}
	event := models.PatientEvent{
		Type:           eventType,
		PatientID:      p.ID,
		DocumentNumber: p.DocumentNumber,
		OccurredAt:     s.now().UTC(),
	}
	if u, ok := models.UserFromContext(ctx); ok {
		event.ActorID = u.ID.String()
	}
	if err := s.publisher.PublishPatientEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish patient event", slog.String("type", eventType), sl.Err(err))
	}
}
