// Package jwt реализует генерацию и парсинг подписанных JWT, в которых
// хранятся данные сессии пользователя.
//
// Maker определяет интерфейс для создания и проверки токенов.
// MakerImpl — реализация на HS256 с секретным ключом и издателем.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов сессии.
type Maker interface {
	// GenerateToken подписывает claims и возвращает компактную строку токена.
	GenerateToken(claims CustomClaims) (string, error)
	// ParseToken проверяет подпись, алгоритм, издателя и срок действия.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа.
type MakerImpl struct {
	secretKey []byte           // Секретный ключ для подписи токенов.
	issuer    string           // Значение поля iss.
	now       func() time.Time // Источник времени для проверки срока действия.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(secretKey, issuer string) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени, используемый при проверке exp.
func (j *MakerImpl) WithClock(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}
