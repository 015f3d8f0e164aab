package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is the fallback signing secret. Refused when ENV=prod.
const DevJWTSecret = "supersecretkey"

// DefaultCORSOrigins are the front-end origins allowed when CORS_ALLOWED_ORIGINS is unset.
var DefaultCORSOrigins = []string{"https://tokeley.github.io", "http://localhost:5173"}

type Config struct {
	Port string

	// DatabaseURL takes precedence over the DB_* parts when set.
	DatabaseURL string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json". LogLevel is debug, info, warn or error.
	LogFormat string
	LogLevel  string

	CORSAllowedOrigins []string

	// LoginRatePerMinute caps login attempts per client IP.
	LoginRatePerMinute int
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "researchlog")
	v.SetDefault("DB_USER", "researchlog")
	v.SetDefault("DB_PASS", "researchlog")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("ENV", "dev")
	v.SetDefault("JWT_EXPIRE_HOURS", 24)
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)

	return Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		DBHost: v.GetString("DB_HOST"),
		DBPort: v.GetString("DB_PORT"),
		DBName: v.GetString("DB_NAME"),
		DBUser: v.GetString("DB_USER"),
		DBPass: v.GetString("DB_PASS"),

		DBMaxOpenConns: positive(v.GetInt("DB_MAX_OPEN_CONNS"), 25),
		DBMaxIdleConns: positive(v.GetInt("DB_MAX_IDLE_CONNS"), 5),

		JWTSecret:      v.GetString("JWT_SECRET"),
		Env:            v.GetString("ENV"),
		JWTExpireHours: positive(v.GetInt("JWT_EXPIRE_HOURS"), 24),

		TLSCertFile: v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:  v.GetString("TLS_KEY_FILE"),

		LogFormat: v.GetString("LOG_FORMAT"),
		LogLevel:  v.GetString("LOG_LEVEL"),

		CORSAllowedOrigins: parseCORSOrigins(v.GetString("CORS_ALLOWED_ORIGINS")),

		LoginRatePerMinute: positive(v.GetInt("LOGIN_RATE_PER_MINUTE"), 10),
	}
}

// Validate rejects configurations that must not reach production.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return errors.New("JWT_SECRET must be set to a non-default value when ENV=prod")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// DSN returns a postgres URL usable by both lib/pq and golang-migrate.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpireHours) * time.Hour
}

func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s port=%s db=%s:%s/%s tls=%t", c.Env, c.Port, c.DBHost, c.DBPort, c.DBName, c.TLSEnabled())
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if strings.TrimSpace(s) == "" {
		return append([]string(nil), DefaultCORSOrigins...)
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
