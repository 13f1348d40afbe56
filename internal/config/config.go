package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environments recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Development-only JWT secrets used when the environment sets none.
const (
	defaultJWTSecretUser  = "change-me-user"
	defaultJWTSecretAdmin = "change-me-admin"
)

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and passed by pointer; nothing below main reads the environment.
type Config struct {
	ServerPort string
	Env        string
	LogLevel   string

	DBDriver   string
	MySQLDSN   string
	SQLitePath string
	ResetDB    bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	MaxTeams int

	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	AdminName         string

	JWTSecretUser  string
	JWTSecretAdmin string
	JWTExpire      time.Duration

	FrontendURL     string
	RateLimitWindow time.Duration
	RateLimitMax    int
	SwaggerHost     string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "5000"),
		Env:        getEnv("APP_ENV", EnvDevelopment),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/hackathon?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath: getEnv("SQLITE_PATH", "hackathon.db"),
		ResetDB:    getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		MaxTeams: getEnvInt("MAX_TEAMS", 50),

		AdminEmail:        strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminName:         getEnv("ADMIN_NAME", "Admin User"),

		JWTSecretUser:  getEnv("JWT_SECRET_USER", defaultJWTSecretUser),
		JWTSecretAdmin: getEnv("JWT_SECRET_ADMIN", defaultJWTSecretAdmin),
		JWTExpire:      getEnvDuration("JWT_EXPIRE", 7*24*time.Hour),

		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 15*60*1000)) * time.Millisecond,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
	}
}

// Validate reports configuration that would leave the service unusable or insecure.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxTeams < 1 {
		errs = append(errs, fmt.Errorf("MAX_TEAMS must be positive, got %d", c.MaxTeams))
	}
	if c.AdminEmail == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL is required"))
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	if c.JWTSecretUser == "" || c.JWTSecretAdmin == "" {
		errs = append(errs, errors.New("JWT_SECRET_USER and JWT_SECRET_ADMIN are required"))
	} else if c.JWTSecretUser == c.JWTSecretAdmin {
		errs = append(errs, errors.New("JWT_SECRET_USER and JWT_SECRET_ADMIN must differ"))
	}
	if c.IsProduction() {
		if c.JWTSecretUser == defaultJWTSecretUser {
			errs = append(errs, errors.New("JWT_SECRET_USER must be set in production"))
		}
		if c.JWTSecretAdmin == defaultJWTSecretAdmin {
			errs = append(errs, errors.New("JWT_SECRET_ADMIN must be set in production"))
		}
	}
	if c.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE must be positive"))
	}
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// AllowedOrigins lists the origins accepted by CORS.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.FrontendURL}
	for _, o := range []string{"http://localhost:3000", "http://localhost:5173"} {
		if o != c.FrontendURL {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

// ParseDuration accepts Go durations ("36h", "15m") and whole days ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
