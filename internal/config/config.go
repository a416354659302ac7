package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const envProduction = "production"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`

	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DBDSN    string `env:"DB_DSN"`
	MySQLDSN string `env:"MYSQL_DSN"`
	ResetDB  bool   `env:"RESET_DB"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"720h"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"12"`
	FrontendURL      string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	APIURL           string        `env:"API_URL" envDefault:"http://localhost:8080"`
	SwaggerHost      string        `env:"SWAGGER_HOST"`
	NotifyQueueSize  int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`
	OAuthHTTPTimeout time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
	OAuthStateTTL    time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	UserCacheTTL     time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`
	NotifyTimeout    time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	Google   OAuthClient `envPrefix:"GOOGLE_"`
	LinkedIn OAuthClient `envPrefix:"LINKEDIN_AUTH_"`

	SMTP SMTP `envPrefix:"SMTP_"`
}

// OAuthClient is the client registration of one external identity provider.
type OAuthClient struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Enabled reports whether the provider has enough configuration to be offered.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// SMTP describes the outgoing mail server.
type SMTP struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM" envDefault:"PersonaPilot <noreply@personapilot.io>"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = cfg.MySQLDSN
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, envProduction)
}

// Validate checks required settings. A missing JWT secret is always fatal; a
// missing DSN is fatal only in production and otherwise falls back to a local default.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBDSN == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_DSN is required"))
		} else {
			c.DBDSN = defaultDSN(c.DBDriver)
		}
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	return errors.Join(errs...)
}

// Warnings lists recommended integrations that are not configured.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.Google.Enabled() {
		warnings = append(warnings, "GOOGLE_CLIENT_ID not set: Google login is disabled")
	}
	if !c.LinkedIn.Enabled() {
		warnings = append(warnings, "LINKEDIN_AUTH_CLIENT_ID not set: LinkedIn login is disabled")
	}
	switch {
	case c.SMTP.Host == "" && c.IsProduction():
		warnings = append(warnings, "SMTP_HOST not set: emails are not delivered and their links are redacted from the log")
	case c.SMTP.Host == "":
		warnings = append(warnings, "SMTP_HOST not set: emails are written to the log")
	}
	if c.RedisAddr == "" {
		warnings = append(warnings, "REDIS_ADDR not set: caching and OAuth state are unavailable")
	}
	return warnings
}

func defaultDSN(driver string) string {
	if driver == "postgres" {
		return "host=localhost user=postgres password=postgres dbname=personapilot port=5432 sslmode=disable"
	}
	return "user:password@tcp(localhost:3306)/personapilot?charset=utf8mb4&parseTime=True&loc=Local"
}
