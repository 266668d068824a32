package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Token sources understood by the access gate
const (
	TokenSourceCookie  = "cookie"
	TokenSourceHeader  = "header"
	TokenSourceSession = "session"
)

// Delete policies for workspaces and users
const (
	DeletePolicyCascade  = "cascade"
	DeletePolicyRestrict = "restrict"
)

type Config struct {
	ServerPort      string
	GinMode         string
	ShutdownTimeout time.Duration

	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Policy    PolicyConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type DBConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	QueryTimeout time.Duration
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns host:port for the redis connection.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	JWTSecret       string
	JWTExpiry       time.Duration
	TokenSource     string
	CookieName      string
	SessionStore    string
	SessionSecret   string
	RevocationStore string
	BcryptCost      int
}

type PolicyConfig struct {
	WorkspaceDelete                   string
	UserDelete                        string
	AdminListingsEnabled              bool
	DocumentCreateNeedsWorkspaceOwner bool
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	LoginRPS   float64
	LoginBurst int
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Load reads configuration from the environment and an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "docsuser")
	v.SetDefault("DB_PASSWORD", "docspassword")
	v.SetDefault("DB_NAME", "collab_docs")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("JWT_SECRET", "default-secret-key-change-me")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("AUTH_TOKEN_SOURCE", TokenSourceCookie)
	v.SetDefault("AUTH_COOKIE_NAME", "token")
	v.SetDefault("SESSION_STORE", "cookie")
	v.SetDefault("SESSION_SECRET", v.GetString("JWT_SECRET"))
	v.SetDefault("REVOCATION_STORE", "memory")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("WORKSPACE_DELETE_POLICY", DeletePolicyCascade)
	v.SetDefault("USER_DELETE_POLICY", DeletePolicyCascade)
	v.SetDefault("ADMIN_LISTINGS_ENABLED", false)
	v.SetDefault("DOCUMENT_CREATE_REQUIRES_WORKSPACE_OWNER", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1.0)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)

	return &Config{
		ServerPort:      v.GetString("SERVER_PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			QueryTimeout: v.GetDuration("DB_QUERY_TIMEOUT"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Auth: AuthConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTExpiry:       v.GetDuration("JWT_EXPIRY"),
			TokenSource:     strings.ToLower(v.GetString("AUTH_TOKEN_SOURCE")),
			CookieName:      v.GetString("AUTH_COOKIE_NAME"),
			SessionStore:    strings.ToLower(v.GetString("SESSION_STORE")),
			SessionSecret:   v.GetString("SESSION_SECRET"),
			RevocationStore: strings.ToLower(v.GetString("REVOCATION_STORE")),
			BcryptCost:      v.GetInt("BCRYPT_COST"),
		},
		Policy: PolicyConfig{
			WorkspaceDelete:                   strings.ToLower(v.GetString("WORKSPACE_DELETE_POLICY")),
			UserDelete:                        strings.ToLower(v.GetString("USER_DELETE_POLICY")),
			AdminListingsEnabled:              v.GetBool("ADMIN_LISTINGS_ENABLED"),
			DocumentCreateNeedsWorkspaceOwner: v.GetBool("DOCUMENT_CREATE_REQUIRES_WORKSPACE_OWNER"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   v.GetFloat64("LOGIN_RATE_LIMIT_RPS"),
			LoginBurst: v.GetInt("LOGIN_RATE_LIMIT_BURST"),
		},
	}
}

// Validate rejects unknown enum values and unsafe release settings.
func (c *Config) Validate() error {
	if err := oneOf("DB_DRIVER", c.DB.Driver, "mysql", "postgres", "sqlite"); err != nil {
		return err
	}
	if err := oneOf("AUTH_TOKEN_SOURCE", c.Auth.TokenSource, TokenSourceCookie, TokenSourceHeader, TokenSourceSession); err != nil {
		return err
	}
	if err := oneOf("SESSION_STORE", c.Auth.SessionStore, "cookie", "redis"); err != nil {
		return err
	}
	if err := oneOf("REVOCATION_STORE", c.Auth.RevocationStore, "memory", "redis", "none"); err != nil {
		return err
	}
	if err := oneOf("WORKSPACE_DELETE_POLICY", c.Policy.WorkspaceDelete, DeletePolicyCascade, DeletePolicyRestrict); err != nil {
		return err
	}
	if err := oneOf("USER_DELETE_POLICY", c.Policy.UserDelete, DeletePolicyCascade, DeletePolicyRestrict); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsRelease() && c.Auth.JWTSecret == "default-secret-key-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.Auth.JWTExpiry)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (allowed: %s)", key, value, strings.Join(allowed, ", "))
}
