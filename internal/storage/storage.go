// Package storage описывает общие ошибки и вспомогательные функции
// хранилищ учётных записей.
package storage

import (
	"errors"
	"strings"
)

var (
	// ErrUserExists возвращается, если учётная запись с такой почтой уже есть.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если учётная запись не найдена.
	ErrUserNotFound = errors.New("user not found")
)

// NormalizeEmail приводит почту к виду, по которому проверяется уникальность.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
