// Package config предоставялет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"APP_ENV" env-default:"local"`
	GRPCAddress     string `yaml:"grpc_address" env:"GRPC_ADDRESS"`
	HTTPServer      `yaml:"http_server"`
	Session         `yaml:"session"`
	PasswordHash    `yaml:"password_hash"`
	CORS            `yaml:"cors"`
	RateLimit       `yaml:"rate_limit"`
	LoginThrottle   `yaml:"login_throttle"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Session структура для настройки cookie сессии
type Session struct {
	SecretKey          string        `yaml:"secret_key" env:"SESSION_SECRET_KEY"`
	Issuer             string        `yaml:"issuer" env-default:"cookie-auth"`
	CookieName         string        `yaml:"cookie_name" env-default:"cookieauth.session"`
	CookieDomain       string        `yaml:"cookie_domain"`
	CookieInsecure     bool          `yaml:"cookie_insecure" env:"SESSION_COOKIE_INSECURE"`
	Lifetime           time.Duration `yaml:"lifetime" env-default:"24h"`
	PersistentLifetime time.Duration `yaml:"persistent_lifetime" env-default:"720h"`
	DisableSliding     bool          `yaml:"disable_sliding"`
}

// PasswordHash структура для настройки стоимости argon2id
type PasswordHash struct {
	MemoryKiB   uint32 `yaml:"memory_kib" env-default:"65536"`
	Iterations  uint32 `yaml:"iterations" env-default:"1"`
	Parallelism uint8  `yaml:"parallelism" env-default:"4"`
}

// CORS структура для настройки доступа веб-клиента
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// RateLimit структура для настройки ограничителя запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// LoginThrottle структура для блокировки перебора паролей
type LoginThrottle struct {
	MaxFailures int           `yaml:"max_failures" env-default:"5"`
	Window      time.Duration `yaml:"window" env-default:"15m"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для публикации событий об учётных записях
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"accounts"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Load читает конфиг из файла path, применяя переменные окружения и значения по умолчанию.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: file %s: %w", op, path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные настройки.
func (c *Config) Validate() error {
	if len(c.SecretKey) < 32 {
		return errors.New("session.secret_key must be at least 32 bytes")
	}
	if c.Lifetime <= 0 || c.PersistentLifetime <= 0 {
		return errors.New("session lifetimes must be positive")
	}
	return nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String возвращает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"GRPCAddress: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  Issuer: %s\n"+
			"  CookieName: %s\n"+
			"  Lifetime: %s\n"+
			"  PersistentLifetime: %s\n"+
			"  Sliding: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"RabbitMQ:\n"+
			"  Configured: %t\n",
		c.Env,
		c.GRPCAddress,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Issuer,
		c.CookieName,
		c.Lifetime,
		c.PersistentLifetime,
		!c.DisableSliding,
		c.AddressRedis,
		c.URL != "",
	)
}
