// Package middlewarectx содержит HTTP middleware сервиса.
//
// SessionMiddleware читает cookie сессии, проверяет токен и кладёт claims
// в контекст запроса. При скользящем сроке действия обновлённый cookie
// выставляется прямо в ответе. Неаутентифицированный запрос получает
// 401 Unauthorized без перенаправления.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cookie-auth/internal/http/response"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/metrics"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ClaimsKey — ключ для claims сессии в контексте.
const ClaimsKey Key = "session_claims"

// SessionResolver описывает операции над токеном сессии.
type SessionResolver interface {
	TokenFromRequest(r *http.Request) (string, error)
	Resolve(token string) (session.Claims, error)
	Slide(claims session.Claims) (session.Session, bool, error)
	Cookie(s session.Session) *http.Cookie
}

// ClaimsFromContext возвращает claims сессии, сохранённые SessionMiddleware.
func ClaimsFromContext(ctx context.Context) (session.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(session.Claims)
	return claims, ok
}

// WithClaims возвращает контекст с claims сессии.
func WithClaims(ctx context.Context, claims session.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// SessionMiddleware пропускает только запросы с валидным cookie сессии.
func SessionMiddleware(log *slog.Logger, sessions SessionResolver, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := sessions.TokenFromRequest(r)
			if err != nil {
				log.Info("session cookie missing")
				m.SessionResolved(metrics.ResultUnauthorized)
				unauthorized(w, r)
				return
			}

			claims, err := sessions.Resolve(token)
			if err != nil {
				log.Info("session rejected", sl.Err(err))
				m.SessionResolved(metrics.ResultUnauthorized)
				unauthorized(w, r)
				return
			}

			renewed, ok, err := sessions.Slide(claims)
			switch {
			case err != nil:
				log.Error("failed to renew session", sl.Err(err))
				m.SessionResolved(metrics.ResultSuccess)
			case ok:
				http.SetCookie(w, sessions.Cookie(renewed))
				claims = renewed.Claims
				log.Debug("session renewed", slog.String("user_id", claims.SubjectID))
				m.SessionResolved(metrics.ResultRenewed)
			default:
				m.SessionResolved(metrics.ResultSuccess)
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(session.ErrUnauthenticated.Error()))
}
