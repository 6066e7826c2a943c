package patient

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/validate"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

var fieldValidator = validate.New()

// Normalize обрезает пробелы, приводит email к нижнему регистру, а коды
// перечислений к верхнему. Пустые аллергии заменяются значением по умолчанию.
func Normalize(in models.PatientInput) models.PatientInput {
	in.DocumentType = strings.ToUpper(strings.TrimSpace(in.DocumentType))
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	in.FirstNames = strings.TrimSpace(in.FirstNames)
	in.LastNames = strings.TrimSpace(in.LastNames)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Gender = strings.ToUpper(strings.TrimSpace(in.Gender))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.HealthProvider = strings.TrimSpace(in.HealthProvider)
	in.BloodType = strings.ToUpper(strings.TrimSpace(in.BloodType))
	in.Allergies = strings.TrimSpace(in.Allergies)
	if in.Allergies == "" {
		in.Allergies = models.DefaultAllergies
	}
	in.EmergencyContact.Name = strings.TrimSpace(in.EmergencyContact.Name)
	in.EmergencyContact.Phone = strings.TrimSpace(in.EmergencyContact.Phone)
	in.EmergencyContact.Relationship = strings.TrimSpace(in.EmergencyContact.Relationship)
	return in
}

// Validate проверяет нормализованные данные карточки и возвращает по одной
// ошибке на каждое невалидное поле. Дата рождения сравнивается с now.
func Validate(in models.PatientInput, now time.Time) []models.FieldError {
	fields := validate.Struct(fieldValidator, in)

	if !hasField(fields, "birthDate") {
		if birth, err := time.Parse(models.DateLayout, in.BirthDate); err == nil {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if birth.After(today) {
				fields = append(fields, models.FieldError{
					Field:   "birthDate",
					Message: "birthDate cannot be in the future",
				})
			}
		}
	}
	return fields
}

func hasField(fields []models.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

func normalizePatch(p models.PatientPatch) models.PatientPatch {
	p.DocumentType = upperPtr(p.DocumentType)
	p.DocumentNumber = trimPtr(p.DocumentNumber)
	p.FirstNames = trimPtr(p.FirstNames)
	p.LastNames = trimPtr(p.LastNames)
	p.BirthDate = trimPtr(p.BirthDate)
	p.Gender = upperPtr(p.Gender)
	p.Phone = trimPtr(p.Phone)
	if p.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &v
	}
	p.Address = trimPtr(p.Address)
	p.City = trimPtr(p.City)
	p.HealthProvider = trimPtr(p.HealthProvider)
	p.BloodType = upperPtr(p.BloodType)
	p.Allergies = trimPtr(p.Allergies)
	if p.Allergies != nil && *p.Allergies == "" {
		v := models.DefaultAllergies
		p.Allergies = &v
	}
	if p.EmergencyContact != nil {
		ec := *p.EmergencyContact
		ec.Name = trimPtr(ec.Name)
		ec.Phone = trimPtr(ec.Phone)
		ec.Relationship = trimPtr(ec.Relationship)
		p.EmergencyContact = &ec
	}
	return p
}

// applyPatch накладывает переданные поля на текущие значения карточки.
func applyPatch(in models.PatientInput, p models.PatientPatch) models.PatientInput {
	set(&in.DocumentType, p.DocumentType)
	set(&in.DocumentNumber, p.DocumentNumber)
	set(&in.FirstNames, p.FirstNames)
	set(&in.LastNames, p.LastNames)
	set(&in.BirthDate, p.BirthDate)
	set(&in.Gender, p.Gender)
	set(&in.Phone, p.Phone)
	set(&in.Email, p.Email)
	set(&in.Address, p.Address)
	set(&in.City, p.City)
	set(&in.HealthProvider, p.HealthProvider)
	set(&in.BloodType, p.BloodType)
	set(&in.Allergies, p.Allergies)
	if ec := p.EmergencyContact; ec != nil {
		set(&in.EmergencyContact.Name, ec.Name)
		set(&in.EmergencyContact.Phone, ec.Phone)
		set(&in.EmergencyContact.Relationship, ec.Relationship)
	}
	return in
}

// toUpdate переводит переданные поля в набор колонок для хранилища.
func toUpdate(p models.PatientPatch, birth time.Time) models.PatientUpdate {
	u := models.PatientUpdate{
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		FirstNames:     p.FirstNames,
		LastNames:      p.LastNames,
		Gender:         p.Gender,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		City:           p.City,
		HealthProvider: p.HealthProvider,
		BloodType:      p.BloodType,
		Allergies:      p.Allergies,
	}
	if p.BirthDate != nil {
		u.BirthDate = &birth
	}
	if ec := p.EmergencyContact; ec != nil {
		u.EmergencyName = ec.Name
		u.EmergencyPhone = ec.Phone
		u.EmergencyRelationship = ec.Relationship
	}
	return u
}

func isEmptyPatch(p models.PatientPatch) bool {
	empty := p.DocumentType == nil && p.DocumentNumber == nil && p.FirstNames == nil &&
		p.LastNames == nil && p.BirthDate == nil && p.Gender == nil && p.Phone == nil &&
		p.Email == nil && p.Address == nil && p.City == nil && p.HealthProvider == nil &&
		p.BloodType == nil && p.Allergies == nil
	if !empty {
		return false
	}
	ec := p.EmergencyContact
	return ec == nil || (ec.Name == nil && ec.Phone == nil && ec.Relationship == nil)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func upperPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.ToUpper(strings.TrimSpace(*v))
	return &t
}
