// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной проверке учётных данных обработчик выставляет cookie сессии
// и возвращает профиль. Если настроен Throttle, после серии неудачных
// попыток вход для почты временно блокируется.
package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cookie-auth/internal/http/response"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/metrics"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email      string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password   string `json:"password" validate:"required" example:"secret1"`
	RememberMe bool   `json:"rememberMe" example:"false"`
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionIssuer
	throttle Throttle
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// New создает новый экземпляр Handler. throttle может быть nil.
func New(log *slog.Logger, service Service, sessions SessionIssuer, throttle Throttle, m *metrics.Metrics) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		throttle: throttle,
		metrics:  m,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет почту и пароль и выставляет cookie сессии на 1 день или на 30 дней при rememberMe.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} models.Profile "Успешный вход, cookie выставлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "InvalidCredentials"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.metrics.Login(metrics.ResultValidationErr)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		h.metrics.Login(metrics.ResultValidationErr)
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	if h.throttle != nil {
		blocked, err := h.throttle.Blocked(r.Context(), req.Email)
		if err != nil {
			// Недоступный Redis не должен блокировать вход.
			log.Warn("login throttle unavailable", sl.Err(err))
		}
		if blocked {
			log.Info("login throttled")
			h.metrics.Login(metrics.ResultThrottled)
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("TooManyAttempts"))
			return
		}
	}

	profile, err := h.service.Validate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Info("invalid credentials")
			h.metrics.Login(metrics.ResultInvalid)
			if h.throttle != nil {
				if err := h.throttle.Fail(r.Context(), req.Email); err != nil {
					log.Warn("failed to record login failure", sl.Err(err))
				}
			}
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(services.ErrInvalidCredentials.Error()))
			return
		}
		log.Error("failed to validate credentials", sl.Err(err))
		h.metrics.Login(metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	s, err := h.sessions.Issue(profile, req.RememberMe)
	if err != nil {
		log.Error("failed to issue session", sl.Err(err))
		h.metrics.Login(metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if h.throttle != nil {
		if err := h.throttle.Reset(r.Context(), req.Email); err != nil {
			log.Warn("failed to reset login failures", sl.Err(err))
		}
	}

	http.SetCookie(w, h.sessions.Cookie(s))
	log.Info("login success",
		slog.String("user_id", profile.ID),
		slog.Bool("persistent", req.RememberMe),
	)
	h.metrics.Login(metrics.ResultSuccess)
	render.JSON(w, r, profile)
}
