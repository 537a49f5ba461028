// Package memory реализует потокобезопасное хранилище учётных записей в памяти процесса.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/cookie-auth/internal/models"
	"github.com/magabrotheeeer/cookie-auth/internal/storage"
)

// Storage хранит учётные записи по ID и индекс по нормализованной почте.
// Единственный путь записи — InsertIfAbsentByEmail.
type Storage struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byEmail map[string]string
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:    make(map[string]models.Account),
		byEmail: make(map[string]string),
	}
}

// InsertIfAbsentByEmail атомарно проверяет, что почта свободна, и сохраняет
// учётную запись, построенную factory. При конфликте состояние не меняется.
func (s *Storage) InsertIfAbsentByEmail(ctx context.Context, email string, factory func() models.Account) (models.Account, error) {
	const op = "storage.memory.InsertIfAbsentByEmail"
	select {
	case <-ctx.Done():
		return models.Account{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	key := storage.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return models.Account{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	account := factory()
	if _, ok := s.byID[account.ID]; ok {
		return models.Account{}, fmt.Errorf("%s: duplicate id %q", op, account.ID)
	}
	account.Email = key

	s.byID[account.ID] = account
	s.byEmail[key] = account.ID

	return account, nil
}

// Get возвращает учётную запись по ID.
func (s *Storage) Get(ctx context.Context, id string) (models.Account, error) {
	const op = "storage.memory.Get"
	select {
	case <-ctx.Done():
		return models.Account{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return models.Account{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return account, nil
}

// FindByEmail ищет учётную запись по почте без учёта регистра.
func (s *Storage) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	const op = "storage.memory.FindByEmail"
	select {
	case <-ctx.Done():
		return models.Account{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[storage.NormalizeEmail(email)]
	if !ok {
		return models.Account{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return s.byID[id], nil
}

// Len возвращает количество учётных записей.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
