package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/cookie-auth/internal/storage"
)

const throttleKeyPrefix = "login_failures:"

// LoginThrottle считает неудачные попытки входа по почте. Счётчик живёт
// window с момента первой ошибки; после maxFailures попыток вход блокируется
// до истечения окна.
type LoginThrottle struct {
	cache       *Cache
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle создаёт LoginThrottle.
func NewLoginThrottle(c *Cache, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		cache:       c,
		maxFailures: int64(maxFailures),
		window:      window,
	}
}

func throttleKey(email string) string {
	return throttleKeyPrefix + storage.NormalizeEmail(email)
}

// Blocked сообщает, исчерпан ли лимит попыток для почты.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	const op = "cache.LoginThrottle.Blocked"
	n, err := t.cache.Db.Get(ctx, throttleKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n >= t.maxFailures, nil
}

// Fail учитывает неудачную попытку входа.
func (t *LoginThrottle) Fail(ctx context.Context, email string) error {
	const op = "cache.LoginThrottle.Fail"
	key := throttleKey(email)

	n, err := t.cache.Db.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 {
		if err := t.cache.Db.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	const op = "cache.LoginThrottle.Reset"
	if err := t.cache.Db.Del(ctx, throttleKey(email)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
