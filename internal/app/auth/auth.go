// Package auth собирает сервис аутентификации: HTTP API с cookie-сессиями,
// gRPC-сервис проверки сессий и необязательные Redis и RabbitMQ.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/cookie-auth/internal/cache"
	"github.com/magabrotheeeer/cookie-auth/internal/config"
	"github.com/magabrotheeeer/cookie-auth/internal/grpc/server"
	"github.com/magabrotheeeer/cookie-auth/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/password"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/metrics"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
	"github.com/magabrotheeeer/cookie-auth/internal/storage/memory"
)

const shutdownTimeout = 15 * time.Second

// App владеет серверами и внешними подключениями сервиса.
type App struct {
	server       *http.Server
	grpcServer   *grpc.Server
	grpcListener net.Listener
	cache        *cache.Cache
	amqpConn     *amqp.Connection
	amqpChannel  *amqp.Channel
	logger       *slog.Logger
}

// New создаёт App по конфигурации. Redis, RabbitMQ и gRPC подключаются,
// только если для них задан адрес.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"
	app := &App{logger: logger}

	store := memory.New()
	hasher := password.NewHasher(password.Params{
		Memory:      cfg.MemoryKiB,
		Iterations:  cfg.Iterations,
		Parallelism: cfg.Parallelism,
	})

	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpConn, app.amqpChannel = conn, ch
		publisher = rabbitmq.NewPublisher(ch, cfg.Exchange)
		logger.Info("account events enabled", slog.String("exchange", cfg.Exchange))
	}

	authService, err := services.NewAuthService(store, hasher, publisher, logger)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issuer := session.NewIssuer(jwt.NewJWTMaker(cfg.SecretKey, cfg.Session.Issuer), session.Options{
		CookieName:         cfg.CookieName,
		CookieDomain:       cfg.CookieDomain,
		Insecure:           cfg.CookieInsecure,
		Lifetime:           cfg.Lifetime,
		PersistentLifetime: cfg.PersistentLifetime,
		Sliding:            !cfg.DisableSliding,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)
	m.RegisterAccountsGauge(registry, store.Len)

	deps := Deps{
		Logger:         logger,
		Auth:           authService,
		Sessions:       issuer,
		Limiter:        rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		Metrics:        m,
		Registry:       registry,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.cache = c
		deps.Throttle = cache.NewLoginThrottle(c, cfg.MaxFailures, cfg.LoginThrottle.Window)
		logger.Info("login throttle enabled",
			slog.Int("max_failures", cfg.MaxFailures),
			slog.Duration("window", cfg.LoginThrottle.Window),
		)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.GRPCAddress != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.grpcListener = lis
		app.grpcServer = grpc.NewServer()
		sessionpb.RegisterSessionServiceServer(app.grpcServer, server.NewSessionServer(issuer, authService, m, logger))
	}

	return app, nil
}

// Run запускает серверы и блокируется до отмены ctx или ошибки сервера,
// после чего корректно останавливает всё.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	if a.grpcServer != nil {
		go func() {
			a.logger.Info("Session gRPC service listening on", slog.String("address", a.grpcListener.Addr().String()))
			errCh <- a.grpcServer.Serve(a.grpcListener)
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			a.logger.Error("server stopped", sl.Err(runErr))
		}
	case <-ctx.Done():
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down gracefully")
	err := a.server.Shutdown(timeoutCtx)
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	a.closeResources()
	return err
}

func (a *App) closeResources() {
	if a.grpcListener != nil && a.grpcServer == nil {
		_ = a.grpcListener.Close()
	}
	if a.amqpChannel != nil {
		if err := a.amqpChannel.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
}

// Handler возвращает HTTP-обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
