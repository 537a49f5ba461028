// Package session превращает проверенный профиль в подписанный cookie сессии
// и восстанавливает личность пользователя из него.
//
// Cookie самодостаточен и нигде на сервере не хранится. Поэтому выход из системы
// только просит клиента удалить cookie: перехваченный токен остаётся валидным
// до естественного истечения срока. Для серверного отзыва понадобится список
// отозванных токенов или серверный идентификатор сессии.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/cookie-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
)

// ErrUnauthenticated — токен отсутствует, повреждён или истёк.
var ErrUnauthenticated = errors.New("Unauthenticated")

const (
	// DefaultLifetime — срок жизни обычной сессии.
	DefaultLifetime = 24 * time.Hour
	// DefaultPersistentLifetime — срок жизни сессии «запомнить меня».
	DefaultPersistentLifetime = 30 * 24 * time.Hour
	// DefaultCookieName — имя cookie по умолчанию.
	DefaultCookieName = "cookieauth.session"
)

// Claims — данные личности, встроенные в токен сессии.
type Claims struct {
	SubjectID   string
	Email       string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Persistent  bool
}

// Session — выданный токен вместе с его claims.
type Session struct {
	Token  string
	Claims Claims
}

// Options настраивает Issuer.
type Options struct {
	CookieName         string
	CookieDomain       string
	Insecure           bool // Не ставить флаг Secure (только для локальной разработки)
	Lifetime           time.Duration
	PersistentLifetime time.Duration
	Sliding            bool
}

// Issuer выдаёт, проверяет и продлевает токены сессии.
// После создания не изменяется и безопасен для конкурентного использования.
type Issuer struct {
	maker jwt.Maker
	opts  Options
	now   func() time.Time
}

// NewIssuer создаёт Issuer. Нулевые значения opts заменяются значениями по умолчанию.
func NewIssuer(maker jwt.Maker, opts Options) *Issuer {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if opts.PersistentLifetime <= 0 {
		opts.PersistentLifetime = DefaultPersistentLifetime
	}
	return &Issuer{
		maker: maker,
		opts:  opts,
		now:   time.Now,
	}
}

// WithClock подменяет источник времени.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// CookieName возвращает имя cookie сессии.
func (i *Issuer) CookieName() string {
	return i.opts.CookieName
}

func (i *Issuer) window(persistent bool) time.Duration {
	if persistent {
		return i.opts.PersistentLifetime
	}
	return i.opts.Lifetime
}

// Issue выдаёт токен для профиля со сроком жизни по типу сессии.
func (i *Issuer) Issue(profile models.Profile, persistent bool) (Session, error) {
	const op = "session.Issue"

	// JWT хранит время с точностью до секунды.
	now := i.now().UTC().Truncate(time.Second)
	claims := Claims{
		SubjectID:   profile.ID,
		Email:       profile.Email,
		DisplayName: profile.FullName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(i.window(persistent)),
		Persistent:  persistent,
	}

	token, err := i.maker.GenerateToken(jwt.CustomClaims{
		Email:      claims.Email,
		Name:       claims.DisplayName,
		Persistent: claims.Persistent,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwtlib.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwtlib.NewNumericDate(claims.ExpiresAt),
		},
	})
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return Session{Token: token, Claims: claims}, nil
}

// Resolve проверяет подпись и срок действия токена и возвращает claims.
func (i *Issuer) Resolve(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrUnauthenticated
	}
	parsed, err := i.maker.ParseToken(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if parsed.IssuedAt == nil || parsed.ExpiresAt == nil {
		return Claims{}, ErrUnauthenticated
	}

	return Claims{
		SubjectID:   parsed.Subject,
		Email:       parsed.Email,
		DisplayName: parsed.Name,
		IssuedAt:    parsed.IssuedAt.Time.UTC(),
		ExpiresAt:   parsed.ExpiresAt.Time.UTC(),
		Persistent:  parsed.Persistent,
	}, nil
}

// Slide продлевает сессию, если прошло больше половины её окна.
// Новый срок — now + окно того же типа (обычное или «запомнить меня»).
// Второе значение false означает, что токен переиздавать не нужно.
func (i *Issuer) Slide(claims Claims) (Session, bool, error) {
	if !i.opts.Sliding {
		return Session{}, false, nil
	}

	now := i.now().UTC()
	if !now.Before(claims.ExpiresAt) {
		return Session{}, false, ErrUnauthenticated
	}
	if claims.ExpiresAt.Sub(now) > i.window(claims.Persistent)/2 {
		return Session{}, false, nil
	}

	s, err := i.Issue(models.Profile{
		ID:       claims.SubjectID,
		Email:    claims.Email,
		FullName: claims.DisplayName,
	}, claims.Persistent)
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

// Cookie возвращает cookie, в котором клиент хранит токен сессии.
func (i *Issuer) Cookie(s Session) *http.Cookie {
	maxAge := int(s.Claims.ExpiresAt.Sub(i.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     i.opts.CookieName,
		Value:    s.Token,
		Path:     "/",
		Domain:   i.opts.CookieDomain,
		Expires:  s.Claims.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !i.opts.Insecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie возвращает cookie, который просит клиента удалить сессию.
// Это единственный доступный способ отзыва.
func (i *Issuer) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     i.opts.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   i.opts.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !i.opts.Insecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest извлекает токен сессии из cookie запроса.
func (i *Issuer) TokenFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(i.opts.CookieName)
	if err != nil || c.Value == "" {
		return "", ErrUnauthenticated
	}
	return c.Value, nil
}
