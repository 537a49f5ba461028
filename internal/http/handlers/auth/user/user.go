// Package user реализует HTTP-обработчик получения профиля текущего пользователя.
package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cookie-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cookie-auth/internal/http/response"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

// Service возвращает профиль по ID учётной записи.
type Service interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
}

// Handler обрабатывает запросы профиля текущей сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает профиль владельца cookie сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} models.Profile "Профиль"
// @Failure 401 {object} response.ErrorResponse "Unauthenticated"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.user"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFromContext(r.Context())
	if !ok || claims.SubjectID == "" {
		log.Error("session claims missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(session.ErrUnauthenticated.Error()))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.SubjectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Info("account not found", slog.String("user_id", claims.SubjectID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(services.ErrNotFound.Error()))
			return
		}
		log.Error("failed to get profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, profile)
}
