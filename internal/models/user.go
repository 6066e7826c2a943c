// Package models содержит доменные модели HealthAdmin Lite: учётные записи
// пользователей, карточки пациентов, фильтры выборок и ошибки предметной области.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role определяет уровень доступа пользователя.
type Role string

const (
	// RoleAdmin — администратор системы.
	RoleAdmin Role = "admin"
	// RoleUser — обычный оператор.
	RoleUser Role = "user"
)

// User представляет учётную запись оператора системы.
// Хэш пароля никогда не сериализуется в ответы клиенту.
type User struct {
	ID           uuid.UUID // Уникальный идентификатор пользователя
	Name         string    // Отображаемое имя
	Email        string    // Электронная почта, хранится в нижнем регистре
	PasswordHash string    // bcrypt-хэш пароля
	Role         Role      // admin или user
	Active       bool      // Неактивный пользователь не может войти
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary — публичное представление пользователя.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Summary возвращает публичное представление пользователя без секретов.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
