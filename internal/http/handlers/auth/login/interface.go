package login

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/cookie-auth/internal/models"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

// Service проверяет учётные данные.
type Service interface {
	Validate(ctx context.Context, email, password string) (models.Profile, error)
}

// SessionIssuer выдаёт cookie сессии для проверенного профиля.
type SessionIssuer interface {
	Issue(profile models.Profile, persistent bool) (session.Session, error)
	Cookie(s session.Session) *http.Cookie
}

// Throttle ограничивает число неудачных попыток входа на одну почту.
type Throttle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
