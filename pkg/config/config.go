package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "GATHERLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Mail         MailConfig
	RateLimit    RateLimitConfig
	Notifier     NotifierConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GATHERLY_APP_ENV" required:"true"`
	Port         string `envconfig:"GATHERLY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GATHERLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GATHERLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GATHERLY_DB_DSN"`
	Driver string `envconfig:"GATHERLY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GATHERLY_DB_HOST"`
	Port     int    `envconfig:"GATHERLY_DB_PORT" default:"5432"`
	User     string `envconfig:"GATHERLY_DB_USER"`
	Password string `envconfig:"GATHERLY_DB_PASSWORD"`
	Name     string `envconfig:"GATHERLY_DB_NAME"`
	SSLMode  string `envconfig:"GATHERLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GATHERLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GATHERLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GATHERLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GATHERLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db config requires either GATHERLY_DB_DSN or host/user/name parts")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"GATHERLY_REDIS_URL"`
	Address      string        `envconfig:"GATHERLY_REDIS_ADDR"`
	Password     string        `envconfig:"GATHERLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GATHERLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GATHERLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GATHERLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GATHERLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GATHERLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GATHERLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers decoding of the session token minted by the web frontend.
// The backend never issues tokens; it only verifies and reads identity claims.
type JWTConfig struct {
	Secret string `envconfig:"GATHERLY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"GATHERLY_JWT_ISSUER"`
}

type MailConfig struct {
	Host      string `envconfig:"GATHERLY_MAIL_HOST"`
	Port      int    `envconfig:"GATHERLY_MAIL_PORT" default:"587"`
	Username  string `envconfig:"GATHERLY_MAIL_USERNAME"`
	Password  string `envconfig:"GATHERLY_MAIL_PASSWORD"`
	From      string `envconfig:"GATHERLY_MAIL_FROM"`
	ClientURL string `envconfig:"GATHERLY_CLIENT_URL" default:"http://localhost:3000"`
}

// Enabled reports whether outbound SMTP delivery is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

type RateLimitConfig struct {
	BookingWindow     time.Duration `envconfig:"GATHERLY_RATE_LIMIT_BOOKING_WINDOW" default:"1m"`
	BookingIPLimit    int           `envconfig:"GATHERLY_RATE_LIMIT_BOOKING_IP_LIMIT" default:"20"`
	BookingEmailLimit int           `envconfig:"GATHERLY_RATE_LIMIT_BOOKING_EMAIL_LIMIT" default:"5"`
}

type NotifierConfig struct {
	QueueSize int `envconfig:"GATHERLY_NOTIFIER_QUEUE_SIZE" default:"256"`
	Workers   int `envconfig:"GATHERLY_NOTIFIER_WORKERS" default:"2"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GATHERLY_AUTO_MIGRATE" default:"false"`
}
