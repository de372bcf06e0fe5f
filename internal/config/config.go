// config описывает конфигурацию profiles-service и её загрузку из YAML/ENV.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	S3        S3Config        `yaml:"s3"`
	Avatar    AvatarConfig    `yaml:"avatar"`
	Profile   ProfileConfig   `yaml:"profile"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig — публичный REST-сервер.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

type PostgresConfig struct {
	URL string `yaml:"url" env:"POSTGRES" env-required:"true"`
}

// S3Config — объектное хранилище аватаров.
// PublicBaseURL задаёт публичный префикс ссылок; если пуст, выдаются presigned-ссылки.
type S3Config struct {
	Endpoint      string        `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	RootUser      string        `yaml:"root_user" env:"S3_ROOT_USER" env-required:"true"`
	RootPassword  string        `yaml:"root_password" env:"S3_ROOT_PASSWORD" env-required:"true"`
	Bucket        string        `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	PublicBaseURL string        `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	PresignTTL    time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"10m"`
}

type AvatarConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes" env:"AVATAR_MAX_SIZE_BYTES" env-default:"1048576"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"AVATAR_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png"`
}

// ProfileConfig — правила валидации анкеты. MinAge == 0 отключает проверку возраста.
type ProfileConfig struct {
	MinBirthYear int `yaml:"min_birth_year" env:"PROFILE_MIN_BIRTH_YEAR" env-default:"1900"`
	MinAge       int `yaml:"min_age" env:"PROFILE_MIN_AGE" env-default:"18"`
}

// AuthConfig — проверка access-токенов.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	Algorithm  string        `yaml:"algorithm" env:"AUTH_JWT_ALGORITHM" env-default:"HS256"`
	Leeway     time.Duration `yaml:"leeway" env:"AUTH_JWT_LEEWAY" env-default:"0s"`
	AdminGroup string        `yaml:"admin_group" env:"AUTH_ADMIN_GROUP" env-default:"admin"`
}

// CacheConfig — Redis-кэш пользователей для аутентификации. Пустой URL отключает кэш.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	UsersTTL time.Duration `yaml:"users_ttl" env:"CACHE_USERS_TTL" env-default:"30s"`
}

// TelemetryConfig — экспорт трейсов по OTLP/HTTP. Пустой endpoint отключает экспорт.
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"profiles-service"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service  time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету источников (см. описание пакета).
func Load(path string) (*Config, error) {
	var cfg Config

	file, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if file != "" {
		if err := cleanenv.ReadConfig(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", file, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolvePath выбирает файл конфигурации; пустая строка означает «только ENV».
func resolvePath(path string) (string, error) {
	explicit := path
	if explicit == "" {
		explicit = os.Getenv("CONFIG_PATH")
	}

	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %q stat failed: %w", explicit, err)
		}
		return explicit, nil
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return "local.yaml", nil
	}

	return "", nil
}

func (c *Config) validate() error {
	if c.S3.PresignTTL == 0 {
		c.S3.PresignTTL = 10 * time.Minute
	}

	if c.Avatar.MaxSizeBytes == 0 {
		c.Avatar.MaxSizeBytes = 1 << 20 // 1 MiB
	}

	if c.Profile.MinBirthYear == 0 {
		c.Profile.MinBirthYear = 1900
	}

	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = "HS256"
	}

	if c.Auth.AdminGroup == "" {
		c.Auth.AdminGroup = "admin"
	}

	if c.Cache.UsersTTL == 0 {
		c.Cache.UsersTTL = 30 * time.Second
	}

	if c.Timeouts.Service == 0 {
		c.Timeouts.Service = 15 * time.Second
	}

	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = 10 * time.Second
	}

	if c.HTTP.Host == "" {
		return fmt.Errorf("http.host is required")
	}

	if p, err := strconv.Atoi(c.HTTP.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("http.port must be a valid TCP port (1..65535)")
	}

	if c.Postgres.URL == "" {
		return fmt.Errorf("postgres.url is required")
	}

	if c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required")
	}

	if c.S3.RootUser == "" || c.S3.RootPassword == "" {
		return fmt.Errorf("s3.root_user and s3.root_password are required")
	}

	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}

	if c.S3.PresignTTL < 0 {
		return fmt.Errorf("s3.presign_ttl must be >= 0")
	}

	if c.Avatar.MaxSizeBytes < 0 {
		return fmt.Errorf("avatar.max_size_bytes must be >= 0")
	}

	if len(c.Avatar.AllowedContentTypes) == 0 {
		return fmt.Errorf("avatar.allowed_content_types must not be empty")
	}

	if c.Profile.MinAge < 0 {
		return fmt.Errorf("profile.min_age must be >= 0")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch strings.ToUpper(c.Auth.Algorithm) {
	case "HS256", "HS384", "HS512":
		c.Auth.Algorithm = strings.ToUpper(c.Auth.Algorithm)
	default:
		return fmt.Errorf("auth.algorithm must be one of HS256, HS384, HS512")
	}

	if c.Auth.Leeway < 0 {
		return fmt.Errorf("auth.leeway must be >= 0")
	}

	if c.Cache.UsersTTL < 0 {
		return fmt.Errorf("cache.users_ttl must be >= 0")
	}

	if c.Timeouts.Service < 0 || c.Timeouts.Shutdown < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}

	return nil
}
