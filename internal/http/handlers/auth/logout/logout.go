// Package logout реализует HTTP-обработчик выхода пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cookie-auth/internal/http/response"
)

// CookieExpirer возвращает cookie, удаляющий сессию на стороне клиента.
type CookieExpirer interface {
	ExpiredCookie() *http.Cookie
}

// Handler обрабатывает HTTP-запросы на выход.
type Handler struct {
	log      *slog.Logger
	sessions CookieExpirer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions CookieExpirer) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Просит клиента удалить cookie сессии. Сам токен остаётся валидным до истечения срока.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Cookie сессии удалён"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	http.SetCookie(w, h.sessions.ExpiredCookie())
	log.Info("session cookie cleared")
	render.JSON(w, r, response.OK())
}
