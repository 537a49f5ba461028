// Package models содержит доменную модель учётной записи пользователя
// и её публичное представление (профиль).
package models

import "time"

// Account представляет зарегистрированную учётную запись.
// Хэш пароля никогда не покидает сервис аутентификации.
type Account struct {
	ID           string    // Уникальный идентификатор, не меняется после создания
	Email        string    // Нормализованная электронная почта (уникальна)
	PasswordHash string    // argon2id-хэш пароля в формате PHC
	FullName     string    // Полное имя пользователя
	CreatedAt    time.Time // Дата регистрации
}

// Profile — публичная проекция Account, единственное представление,
// которое возвращается вызывающей стороне.
type Profile struct {
	ID       string `json:"id" example:"2f1c7a52-5a0e-4d3e-9a38-6f2b0f1d9c11"`
	Email    string `json:"email" example:"alice@example.com"`
	FullName string `json:"fullName" example:"Alice A"`
}

// Profile возвращает публичное представление учётной записи.
func (a Account) Profile() Profile {
	return Profile{
		ID:       a.ID,
		Email:    a.Email,
		FullName: a.FullName,
	}
}
