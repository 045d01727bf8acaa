package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Wompi         WompiConfig
	SMTP          SMTPConfig
	Storefront    StorefrontConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.JWT.ensureSecret(cfg.App); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MAGUS_APP_ENV" required:"true"`
	Port         string `envconfig:"MAGUS_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"MAGUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MAGUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MAGUS_DB_DSN"`
	Driver string `envconfig:"MAGUS_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"MAGUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAGUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MAGUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MAGUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MAGUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MAGUS_REDIS_ADDR"`
	Password     string        `envconfig:"MAGUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MAGUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MAGUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MAGUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MAGUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MAGUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MAGUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MAGUS_JWT_SECRET"`
	Issuer            string `envconfig:"MAGUS_JWT_ISSUER" default:"magusbylili"`
	ExpirationMinutes int    `envconfig:"MAGUS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// SessionTTL returns the configured session lifetime (7 days by default).
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// ensureSecret rejects a missing signing secret outside of dev. Dev keeps a
// throwaway default so the API can boot without a .env.
func (j *JWTConfig) ensureSecret(app AppConfig) error {
	if strings.TrimSpace(j.Secret) != "" {
		return nil
	}
	if app.IsDev() {
		j.Secret = DevJWTSecret
		return nil
	}
	return fmt.Errorf("%s is required outside dev", EnvJWTSecret)
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MAGUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MAGUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MAGUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MAGUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MAGUS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MAGUS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MAGUS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MAGUS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MAGUS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MAGUS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MAGUS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MAGUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MAGUS_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigin string `envconfig:"MAGUS_FRONT_ORIGIN" default:"http://localhost:5173"`
}

type WompiConfig struct {
	PublicKey       string        `envconfig:"MAGUS_WOMPI_PUBLIC_KEY"`
	PrivateKey      string        `envconfig:"MAGUS_WOMPI_PRIVATE_KEY"`
	AcceptanceToken string        `envconfig:"MAGUS_WOMPI_ACCEPTANCE_TOKEN"`
	EventsSecret    string        `envconfig:"MAGUS_WOMPI_EVENTS_SECRET"`
	Mode            string        `envconfig:"MAGUS_WOMPI_MODE" default:"sandbox"`
	HTTPTimeout     time.Duration `envconfig:"MAGUS_WOMPI_HTTP_TIMEOUT" default:"10s"`
	ReplayWindow    time.Duration `envconfig:"MAGUS_WOMPI_REPLAY_WINDOW" default:"5m"`
}

// Environment returns the normalized Wompi mode (sandbox/production/mock).
func (w WompiConfig) Environment() string {
	mode := strings.TrimSpace(strings.ToLower(w.Mode))
	if mode == "" {
		return "sandbox"
	}
	return mode
}

type SMTPConfig struct {
	Host     string `envconfig:"MAGUS_SMTP_HOST"`
	Port     int    `envconfig:"MAGUS_SMTP_PORT" default:"587"`
	User     string `envconfig:"MAGUS_SMTP_USER"`
	Password string `envconfig:"MAGUS_SMTP_PASS"`
	Sender   string `envconfig:"MAGUS_SMTP_SENDER" default:"Magus By Lili <no-reply@magusbylili.com>"`
}

// Configured reports whether an SMTP transport can be built at all.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Port > 0 && s.User != "" && s.Password != ""
}

type StorefrontConfig struct {
	BaseURL string `envconfig:"MAGUS_STOREFRONT_URL" default:"http://localhost:5173"`
}
