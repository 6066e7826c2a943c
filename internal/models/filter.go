package models

import "math"

const (
	// DefaultPage — номер страницы по умолчанию.
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию.
	DefaultLimit = 10
	// MaxLimit — максимальный размер страницы.
	MaxLimit = 100
)

// PatientFilter задаёт пагинацию и строку поиска для списка пациентов.
type PatientFilter struct {
	Page   int
	Limit  int
	Search string
}

// Normalize подставляет значения по умолчанию вместо некорректных.
func (f PatientFilter) Normalize() PatientFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset возвращает смещение первой записи страницы.
func (f PatientFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// PatientPage — одна страница списка пациентов.
type PatientPage struct {
	Records []*Patient
	Total   int
	Page    int
	Limit   int
	Pages   int
}

// PageCount считает количество страниц для total записей.
func PageCount(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// PatientStats — агрегаты для дашборда.
type PatientStats struct {
	Total       int            `json:"total"`
	Active      int            `json:"active"`
	Inactive    int            `json:"inactive"`
	ByGender    map[string]int `json:"byGender"`
	ByBloodType map[string]int `json:"byBloodType"`
}
