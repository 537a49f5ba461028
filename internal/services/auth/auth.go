// Package services содержит логику бизнес-уровня для работы с учётными записями:
// регистрацию, проверку учётных данных и получение профиля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cookie-auth/internal/lib/password"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
	"github.com/magabrotheeeer/cookie-auth/internal/storage"
)

var (
	// ErrDuplicateEmail — почта уже занята другой учётной записью.
	ErrDuplicateEmail = errors.New("DuplicateEmail")
	// ErrInvalidCredentials — неверная почта или пароль. Возвращается одинаково
	// для обоих случаев, чтобы не раскрывать существование учётной записи.
	ErrInvalidCredentials = errors.New("InvalidCredentials")
	// ErrNotFound — учётная запись с таким ID не найдена.
	ErrNotFound = errors.New("NotFound")
)

// UserStore описывает контракт хранилища учётных записей.
type UserStore interface {
	// InsertIfAbsentByEmail атомарно сохраняет учётную запись, если почта свободна.
	InsertIfAbsentByEmail(ctx context.Context, email string, factory func() models.Account) (models.Account, error)
	// Get возвращает учётную запись по ID.
	Get(ctx context.Context, id string) (models.Account, error)
	// FindByEmail возвращает учётную запись по почте без учёта регистра.
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// PasswordHasher описывает политику хеширования паролей.
type PasswordHasher interface {
	GetHash(password string) (string, error)
	CompareHash(encodedHash, password string) error
}

// EventPublisher получает события о новых учётных записях.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, profile models.Profile) error
}

// AuthService отвечает за регистрацию и проверку учётных данных.
// Только он видит пароли и их хэши.
type AuthService struct {
	users     UserStore
	hasher    PasswordHasher
	publisher EventPublisher
	log       *slog.Logger
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
// publisher может быть nil, тогда события не отправляются.
func NewAuthService(users UserStore, hasher PasswordHasher, publisher EventPublisher, log *slog.Logger) (*AuthService, error) {
	const op = "services.auth.NewAuthService"

	// Хэш для проверки пароля несуществующего пользователя: время ответа
	// не должно зависеть от того, зарегистрирована ли почта.
	dummy, err := hasher.GetHash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		publisher: publisher,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register создает учётную запись с хэшированным паролем.
//
// Валидация формата полей — ответственность вызывающей стороны.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, fullName string) (models.Profile, error) {
	const op = "services.auth.Register"

	email = storage.NormalizeEmail(email)

	hashed, err := s.hasher.GetHash(rawPassword)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	account, err := s.users.InsertIfAbsentByEmail(ctx, email, func() models.Account {
		return models.Account{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hashed,
			FullName:     fullName,
			CreatedAt:    time.Now().UTC(),
		}
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile := account.Profile()
	if s.publisher != nil {
		if err := s.publisher.PublishRegistered(ctx, profile); err != nil {
			s.log.Error("failed to publish registration event",
				slog.String("op", op),
				slog.String("user_id", profile.ID),
				sl.Err(err),
			)
		}
	}

	return profile, nil
}

// Validate проверяет пару почта/пароль и возвращает профиль.
func (s *AuthService) Validate(ctx context.Context, email, rawPassword string) (models.Profile, error) {
	const op = "services.auth.Validate"

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = s.hasher.CompareHash(s.dummyHash, rawPassword)
			return models.Profile{}, ErrInvalidCredentials
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.CompareHash(account.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatchedHash) {
			return models.Profile{}, ErrInvalidCredentials
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return account.Profile(), nil
}

// GetProfile возвращает профиль по ID учётной записи.
func (s *AuthService) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	const op = "services.auth.GetProfile"

	account, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return account.Profile(), nil
}
