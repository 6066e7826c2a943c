package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout — формат даты рождения в API и CSV.
const DateLayout = "2006-01-02"

// DefaultAllergies подставляется, когда аллергии не указаны.
const DefaultAllergies = "None"

// PatientStatus — состояние карточки пациента.
type PatientStatus string

const (
	// StatusActive — карточка активна.
	StatusActive PatientStatus = "active"
	// StatusInactive — карточка деактивирована (мягкое удаление).
	StatusInactive PatientStatus = "inactive"
)

// Допустимые значения перечислений.
var (
	DocumentTypes = []string{"CC", "TI", "CE", "PA", "RC"}
	Genders       = []string{"M", "F", "O"}
	BloodTypes    = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// EmergencyContact — контактное лицо пациента.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Patient — карточка пациента.
type Patient struct {
	ID               uuid.UUID
	DocumentType     string
	DocumentNumber   string
	FirstNames       string
	LastNames        string
	BirthDate        time.Time
	Gender           string
	Phone            string
	Email            string
	Address          string
	City             string
	HealthProvider   string
	BloodType        string
	Allergies        string
	EmergencyContact EmergencyContact
	Status           PatientStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName возвращает имя и фамилию через пробел.
func (p *Patient) FullName() string {
	return p.FirstNames + " " + p.LastNames
}

// Age возвращает количество полных лет на момент now.
func (p *Patient) Age(now time.Time) int {
	return AgeAt(p.BirthDate, now)
}

// AgeAt считает полные годы между датой рождения и now.
func AgeAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

type patientJSON struct {
	ID               uuid.UUID        `json:"id"`
	DocumentType     string           `json:"documentType"`
	DocumentNumber   string           `json:"documentNumber"`
	FirstNames       string           `json:"firstNames"`
	LastNames        string           `json:"lastNames"`
	FullName         string           `json:"fullName,omitempty"`
	BirthDate        string           `json:"birthDate"`
	Age              int              `json:"age"`
	Gender           string           `json:"gender"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          string           `json:"address"`
	City             string           `json:"city"`
	HealthProvider   string           `json:"healthProvider"`
	BloodType        string           `json:"bloodType"`
	Allergies        string           `json:"allergies"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	Status           PatientStatus    `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// MarshalJSON сериализует карточку с производными полями fullName и age.
func (p Patient) MarshalJSON() ([]byte, error) {
	return json.Marshal(patientJSON{
		ID:               p.ID,
		DocumentType:     p.DocumentType,
		DocumentNumber:   p.DocumentNumber,
		FirstNames:       p.FirstNames,
		LastNames:        p.LastNames,
		FullName:         p.FullName(),
		BirthDate:        p.BirthDate.Format(DateLayout),
		Age:              p.Age(time.Now()),
		Gender:           p.Gender,
		Phone:            p.Phone,
		Email:            p.Email,
		Address:          p.Address,
		City:             p.City,
		HealthProvider:   p.HealthProvider,
		BloodType:        p.BloodType,
		Allergies:        p.Allergies,
		EmergencyContact: p.EmergencyContact,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	})
}

// UnmarshalJSON разбирает карточку, производные поля игнорируются.
func (p *Patient) UnmarshalJSON(data []byte) error {
	var raw patientJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	birth, err := time.Parse(DateLayout, raw.BirthDate)
	if err != nil {
		return fmt.Errorf("birthDate: %w", err)
	}
	*p = Patient{
		ID:               raw.ID,
		DocumentType:     raw.DocumentType,
		DocumentNumber:   raw.DocumentNumber,
		FirstNames:       raw.FirstNames,
		LastNames:        raw.LastNames,
		BirthDate:        birth,
		Gender:           raw.Gender,
		Phone:            raw.Phone,
		Email:            raw.Email,
		Address:          raw.Address,
		City:             raw.City,
		HealthProvider:   raw.HealthProvider,
		BloodType:        raw.BloodType,
		Allergies:        raw.Allergies,
		EmergencyContact: raw.EmergencyContact,
		Status:           raw.Status,
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
	}
	return nil
}

// PatientInput — поля карточки, которые задаёт клиент при создании.
// Правила формата описаны тегами validate.
type PatientInput struct {
	DocumentType     string                `json:"documentType" validate:"required,oneof=CC TI CE PA RC"`
	DocumentNumber   string                `json:"documentNumber" validate:"required,min=5,max=15"`
	FirstNames       string                `json:"firstNames" validate:"required,min=2,max=50"`
	LastNames        string                `json:"lastNames" validate:"required,min=2,max=50"`
	BirthDate        string                `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender           string                `json:"gender" validate:"required,oneof=M F O"`
	Phone            string                `json:"phone" validate:"required,phone"`
	Email            string                `json:"email" validate:"required,email"`
	Address          string                `json:"address" validate:"required,min=5,max=100"`
	City             string                `json:"city" validate:"required"`
	HealthProvider   string                `json:"healthProvider" validate:"required"`
	BloodType        string                `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies        string                `json:"allergies" validate:"max=500"`
	EmergencyContact EmergencyContactInput `json:"emergencyContact"`
}

// EmergencyContactInput — контактное лицо во входных данных.
type EmergencyContactInput struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required,phone"`
	Relationship string `json:"relationship" validate:"required"`
}

// PatientPatch — частичное обновление: nil означает «не менять».
type PatientPatch struct {
	DocumentType     *string                `json:"documentType"`
	DocumentNumber   *string                `json:"documentNumber"`
	FirstNames       *string                `json:"firstNames"`
	LastNames        *string                `json:"lastNames"`
	BirthDate        *string                `json:"birthDate"`
	Gender           *string                `json:"gender"`
	Phone            *string                `json:"phone"`
	Email            *string                `json:"email"`
	Address          *string                `json:"address"`
	City             *string                `json:"city"`
	HealthProvider   *string                `json:"healthProvider"`
	BloodType        *string                `json:"bloodType"`
	Allergies        *string                `json:"allergies"`
	EmergencyContact *EmergencyContactPatch `json:"emergencyContact"`
}

// EmergencyContactPatch — частичное обновление контактного лица.
type EmergencyContactPatch struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Relationship *string `json:"relationship"`
}

// PatientUpdate — набор колонок для UPDATE. nil-поля не изменяются хранилищем.
type PatientUpdate struct {
	DocumentType          *string
	DocumentNumber        *string
	FirstNames            *string
	LastNames             *string
	BirthDate             *time.Time
	Gender                *string
	Phone                 *string
	Email                 *string
	Address               *string
	City                  *string
	HealthProvider        *string
	BloodType             *string
	Allergies             *string
	EmergencyName         *string
	EmergencyPhone        *string
	EmergencyRelationship *string
}

// Input возвращает текущие значения карточки в виде входных данных.
func (p *Patient) Input() PatientInput {
	return PatientInput{
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		FirstNames:     p.FirstNames,
		LastNames:      p.LastNames,
		BirthDate:      p.BirthDate.Format(DateLayout),
		Gender:         p.Gender,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		City:           p.City,
		HealthProvider: p.HealthProvider,
		BloodType:      p.BloodType,
		Allergies:      p.Allergies,
		EmergencyContact: EmergencyContactInput{
			Name:         p.EmergencyContact.Name,
			Phone:        p.EmergencyContact.Phone,
			Relationship: p.EmergencyContact.Relationship,
		},
	}
}
