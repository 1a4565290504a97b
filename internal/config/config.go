// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Log
		Database
		Seed
		Auth
		API
		CORS
		RateLimit
		RabbitMQ
	}

	HTTP struct {
		Port            int
		Host            string
		ShutdownTimeout time.Duration
	}
	Log struct {
		Level  string
		Format string // text or json
	}
	Database struct {
		Driver       string // sqlite (modernc) or sqlite3 (mattn)
		Path         string
		MaxOpenConns int
	}
	Seed struct {
		Enabled       bool
		BcryptCost    int
		AdminEmail    string
		AdminPassword string
	}
	Auth struct {
		Issuer         string
		Audience       string
		JWKSURL        string
		Algorithms     []string
		HMACSecret     string
		ScopeCreate    string
		ScopeUpdate    string
		ScopeDelete    string
		ScopeReadUsers string
	}
	API struct {
		StrictStatus bool // 4xx for rejected input instead of 200 with an error body
	}
	CORS struct {
		AllowedOrigins []string
	}
	RateLimit struct {
		WriteRPS   float64
		WriteBurst int
	}
	RabbitMQ struct {
		URL      string
		Exchange string
	}
)

// Addr is the listen address for http.Server.
func (h HTTP) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// LoadDotEnv loads .env from the working directory if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", "book-catalog.db")
	v.SetDefault("database_max_open_conns", 1)

	v.SetDefault("seed_demo_data", false)
	v.SetDefault("seed_bcrypt_cost", 12)
	v.SetDefault("seed_admin_email", "admin@example.com")
	v.SetDefault("seed_admin_password", "")

	v.SetDefault("auth_issuer", "")
	v.SetDefault("auth_audience", "")
	v.SetDefault("auth_jwks_url", "")
	v.SetDefault("auth_algorithms", "RS256")
	v.SetDefault("auth_hmac_secret", "")
	v.SetDefault("auth_scope_create", "create:books")
	v.SetDefault("auth_scope_update", "update:books")
	v.SetDefault("auth_scope_delete", "delete:books")
	v.SetDefault("auth_scope_read_users", "read:users")

	v.SetDefault("api_strict_status", false)
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("rate_limit_write_rps", 5)
	v.SetDefault("rate_limit_write_burst", 10)
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("rabbitmq_exchange", "catalog")

	issuer := v.GetString("AUTH_ISSUER")
	jwksURL := v.GetString("AUTH_JWKS_URL")
	if jwksURL == "" && issuer != "" {
		jwksURL = strings.TrimSuffix(issuer, "/") + "/.well-known/jwks.json"
	}

	return &Config{
		HTTP: HTTP{
			Port:            v.GetInt("PORT"),
			Host:            v.GetString("HOST"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: Database{
			Driver:       v.GetString("DATABASE_DRIVER"),
			Path:         v.GetString("DATABASE_PATH"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
		},
		Seed: Seed{
			Enabled:       v.GetBool("SEED_DEMO_DATA"),
			BcryptCost:    v.GetInt("SEED_BCRYPT_COST"),
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		},
		Auth: Auth{
			Issuer:         issuer,
			Audience:       v.GetString("AUTH_AUDIENCE"),
			JWKSURL:        jwksURL,
			Algorithms:     splitList(v.GetString("AUTH_ALGORITHMS")),
			HMACSecret:     v.GetString("AUTH_HMAC_SECRET"),
			ScopeCreate:    v.GetString("AUTH_SCOPE_CREATE"),
			ScopeUpdate:    v.GetString("AUTH_SCOPE_UPDATE"),
			ScopeDelete:    v.GetString("AUTH_SCOPE_DELETE"),
			ScopeReadUsers: v.GetString("AUTH_SCOPE_READ_USERS"),
		},
		API: API{
			StrictStatus: v.GetBool("API_STRICT_STATUS"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimit{
			WriteRPS:   v.GetFloat64("RATE_LIMIT_WRITE_RPS"),
			WriteBurst: v.GetInt("RATE_LIMIT_WRITE_BURST"),
		},
		RabbitMQ: RabbitMQ{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
	}
}

// LogLevel maps Log.Level to a slog level, defaulting to info.
func (l Log) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// splitList splits a comma or space separated list, dropping empty entries.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
