package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

var patientColumnList = []string{
	"id", "document_type", "document_number", "first_names", "last_names",
	"birth_date", "gender", "phone", "email", "address", "city",
	"health_provider", "blood_type", "allergies",
	"emergency_contact_name", "emergency_contact_phone", "emergency_contact_relationship",
	"status", "created_at", "updated_at",
}

var patientColumns = strings.Join(patientColumnList, ", ")

// columnsWithPrefix возвращает список колонок с префиксом таблицы.
func columnsWithPrefix(prefix string) string {
	cols := make([]string, len(patientColumnList))
	for i, c := range patientColumnList {
		cols[i] = prefix + "." + c
	}
	return strings.Join(cols, ", ")
}

// CreatePatient сохраняет новую карточку. Метки времени проставляет база.
func (s *Storage) CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	const op = "storage.CreatePatient"

	query := `INSERT INTO patients (
			      id, document_type, document_number, first_names, last_names,
			      birth_date, gender, phone, email, address, city,
			      health_provider, blood_type, allergies,
			      emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
			      status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			  RETURNING ` + patientColumns
	created, err := scanPatient(s.pool.QueryRow(ctx, query,
		p.ID, p.DocumentType, p.DocumentNumber, p.FirstNames, p.LastNames,
		p.BirthDate, p.Gender, p.Phone, p.Email, p.Address, p.City,
		p.HealthProvider, p.BloodType, p.Allergies,
		p.EmergencyContact.Name, p.EmergencyContact.Phone, p.EmergencyContact.Relationship,
		string(p.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapWriteError(err))
	}
	return created, nil
}

// GetPatient возвращает карточку по идентификатору независимо от статуса.
func (s *Storage) GetPatient(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	const op = "storage.GetPatient"

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	p, err := scanPatient(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePatient одним запросом меняет только переданные колонки.
func (s *Storage) UpdatePatient(ctx context.Context, id uuid.UUID, u models.PatientUpdate) (*models.Patient, error) {
	const op = "storage.UpdatePatient"

	query := `UPDATE patients SET
			      document_type = COALESCE($2, document_type),
			      document_number = COALESCE($3, document_number),
			      first_names = COALESCE($4, first_names),
			      last_names = COALESCE($5, last_names),
			      birth_date = COALESCE($6, birth_date),
			      gender = COALESCE($7, gender),
			      phone = COALESCE($8, phone),
			      email = COALESCE($9, email),
			      address = COALESCE($10, address),
			      city = COALESCE($11, city),
			      health_provider = COALESCE($12, health_provider),
			      blood_type = COALESCE($13, blood_type),
			      allergies = COALESCE($14, allergies),
			      emergency_contact_name = COALESCE($15, emergency_contact_name),
			      emergency_contact_phone = COALESCE($16, emergency_contact_phone),
			      emergency_contact_relationship = COALESCE($17, emergency_contact_relationship),
			      updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + patientColumns
	p, err := scanPatient(s.pool.QueryRow(ctx, query, id,
		u.DocumentType, u.DocumentNumber, u.FirstNames, u.LastNames,
		u.BirthDate, u.Gender, u.Phone, u.Email, u.Address, u.City,
		u.HealthProvider, u.BloodType, u.Allergies,
		u.EmergencyName, u.EmergencyPhone, u.EmergencyRelationship,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, mapWriteError(err))
	}
	return p, nil
}

// DeactivatePatient переводит карточку в статус inactive одним запросом.
// Второй результат сообщает, была ли карточка активна до вызова.
func (s *Storage) DeactivatePatient(ctx context.Context, id uuid.UUID) (*models.Patient, bool, error) {
	const op = "storage.DeactivatePatient"

	query := `WITH prev AS (SELECT id, status FROM patients WHERE id = $1)
			  UPDATE patients p
			  SET status = 'inactive',
			      updated_at = CASE WHEN p.status = 'inactive' THEN p.updated_at ELSE NOW() END
			  FROM prev
			  WHERE p.id = prev.id
			  RETURNING ` + columnsWithPrefix("p") + `, prev.status`

	var prevStatus string
	p, err := scanPatient(s.pool.QueryRow(ctx, query, id), &prevStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return p, prevStatus == string(models.StatusActive), nil
}

// ListPatients возвращает страницу карточек, новые первыми, и общее число
// карточек, подходящих под поиск. Оба запроса читают один снимок базы.
func (s *Storage) ListPatients(ctx context.Context, f models.PatientFilter) ([]*models.Patient, int, error) {
	const op = "storage.ListPatients"

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	result, total, err := listPatients(ctx, tx, f)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

func listPatients(ctx context.Context, tx pgx.Tx, f models.PatientFilter) ([]*models.Patient, int, error) {
	where, args := searchClause(f.Search)

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM patients%s
			  ORDER BY created_at DESC, id
			  LIMIT $%d OFFSET $%d`, patientColumns, where, n+1, n+2)
	rows, err := tx.Query(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]*models.Patient, 0, f.Limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// PatientStats считает карточки по статусу, а активные ещё и по полу и группе крови.
func (s *Storage) PatientStats(ctx context.Context) (*models.PatientStats, error) {
	const op = "storage.PatientStats"

	query := `SELECT status, gender, blood_type, COUNT(*)
			  FROM patients
			  GROUP BY status, gender, blood_type`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	stats := &models.PatientStats{
		ByGender:    map[string]int{},
		ByBloodType: map[string]int{},
	}
	for rows.Next() {
		var status, gender, bloodType string
		var count int
		if err := rows.Scan(&status, &gender, &bloodType, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.Total += count
		if status != string(models.StatusActive) {
			stats.Inactive += count
			continue
		}
		stats.Active += count
		stats.ByGender[gender] += count
		stats.ByBloodType[bloodType] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// searchClause строит условие поиска без учёта регистра по именам, фамилиям и номеру документа.
func searchClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(search) + "%"
	return ` WHERE first_names ILIKE $1 ESCAPE '\' OR last_names ILIKE $1 ESCAPE '\' OR document_number ILIKE $1 ESCAPE '\'`,
		[]any{pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanPatient(row pgx.Row, extra ...any) (*models.Patient, error) {
	var p models.Patient
	var status string
	dest := []any{
		&p.ID, &p.DocumentType, &p.DocumentNumber, &p.FirstNames, &p.LastNames,
		&p.BirthDate, &p.Gender, &p.Phone, &p.Email, &p.Address, &p.City,
		&p.HealthProvider, &p.BloodType, &p.Allergies,
		&p.EmergencyContact.Name, &p.EmergencyContact.Phone, &p.EmergencyContact.Relationship,
		&status, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Status = models.PatientStatus(status)
	return &p, nil
}
