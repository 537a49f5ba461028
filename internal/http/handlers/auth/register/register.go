// Package register реализует HTTP-обработчик регистрации учётной записи.
//
// Запрос декодируется из JSON и валидируется, после чего регистрация
// делегируется Service. В ответ возвращается профиль без хэша пароля.
package register

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

// Request — структура входных данных для регистрации.
type Request struct {
	Email           string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password        string `json:"password" validate:"required,min=6,max=100" example:"secret1"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" example:"secret1"`
	FullName        string `json:"fullName" validate:"max=100" example:"Alice A"`
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, m *metrics.Metrics) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		metrics:  m,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись. Почта сравнивается без учёта регистра.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные регистрации"
// @Success 201 {object} models.Profile "Учётная запись создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос, ошибка валидации или DuplicateEmail"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.metrics.Registration(metrics.ResultValidationErr)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		h.metrics.Registration(metrics.ResultValidationErr)
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	profile, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			log.Info("email already registered")
			h.metrics.Registration(metrics.ResultDuplicate)
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(services.ErrDuplicateEmail.Error()))
			return
		}
		log.Error("failed to register user", sl.Err(err))
		h.metrics.Registration(metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("user registered", slog.String("user_id", profile.ID))
	h.metrics.Registration(metrics.ResultSuccess)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, profile)
}
