// Package password реализует хеширование и проверку паролей на основе argon2id.
//
// GetHash создаёт хэш с солью в формате PHC:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// CompareHash пересчитывает хэш с параметрами из строки и сравнивает
// результаты за постоянное время.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMismatchedHash возвращается, если пароль не соответствует хэшу.
	ErrMismatchedHash = errors.New("password does not match hash")
	// ErrInvalidHash возвращается для строки, которая не является argon2id-хэшем.
	ErrInvalidHash = errors.New("invalid password hash")
	// ErrEmptyPassword возвращается при попытке захешировать пустой пароль.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Params задаёт стоимость argon2id.
type Params struct {
	Memory      uint32 // Память в KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams — рекомендованные OWASP параметры argon2id.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher хеширует пароли с заданными параметрами.
type Hasher struct {
	params Params
}

// NewHasher создаёт Hasher. Нулевые поля params заменяются значениями DefaultParams.
func NewHasher(params Params) *Hasher {
	if params.Memory == 0 {
		params.Memory = DefaultParams.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultParams.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = DefaultParams.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultParams.KeyLength
	}
	return &Hasher{params: params}
}

// GetHash принимает пароль пользователя и возвращает его argon2id-хэш со случайной солью.
func (h *Hasher) GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if password == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// CompareHash сравнивает argon2id-хэш с введённым паролем.
//
// Возвращает nil при совпадении, ErrMismatchedHash при несовпадении
// и ErrInvalidHash, если строку хэша не удалось разобрать.
func (h *Hasher) CompareHash(encodedHash, password string) error {
	const op = "password.CompareHash"

	p, salt, expected, err := decode(encodedHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	computed := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return fmt.Errorf("%s: %w", op, ErrMismatchedHash)
	}
	return nil
}

func decode(encodedHash string) (Params, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var (
		p       Params
		threads uint32
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &threads); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if threads == 0 || threads > 255 || p.Iterations == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.Parallelism = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
