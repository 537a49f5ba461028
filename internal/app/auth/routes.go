package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/cookie-auth/docs" // swagger spec
	"github.com/magabrotheeeer/cookie-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/cookie-auth/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/cookie-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/cookie-auth/internal/http/handlers/auth/user"
	"github.com/magabrotheeeer/cookie-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/cookie-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cookie-auth/internal/metrics"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

// Deps — зависимости HTTP-маршрутов.
type Deps struct {
	Logger         *slog.Logger
	Auth           *services.AuthService
	Sessions       *session.Issuer
	Throttle       login.Throttle // nil, если Redis не настроен
	Limiter        *rate.Limiter
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	AllowedOrigins []string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(d.Metrics),
	)
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/auth", func(r chi.Router) {
		// Открытые конечные точки с ограничением частоты
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.Limiter))
			}
			r.Post("/register", register.New(d.Logger, d.Auth, d.Metrics).ServeHTTP)
			r.Post("/login", login.New(d.Logger, d.Auth, d.Sessions, d.Throttle, d.Metrics).ServeHTTP)
		})
		r.Post("/logout", logout.New(d.Logger, d.Sessions).ServeHTTP)

		// Группа с проверкой cookie сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(d.Logger, d.Sessions, d.Metrics))
			r.Get("/user", user.New(d.Logger, d.Auth).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Logger).ServeHTTP)
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
