package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreFile     = "file"
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Config is the console server configuration.
type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	APIBaseURL     string
	APITimeout     time.Duration
	APIRefreshPath string
	RefreshTimeout time.Duration
	LookupTimeout  time.Duration

	SessionStore   string
	SessionFile    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	ConsoleID      string

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	LogLevel         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		APIBaseURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/"),
		APITimeout:         getDuration("API_TIMEOUT", 20*time.Second),
		APIRefreshPath:     getEnv("API_REFRESH_PATH", "/api/auth/refresh"),
		RefreshTimeout:     getDuration("REFRESH_TIMEOUT", 10*time.Second),
		LookupTimeout:      getDuration("LOOKUP_TIMEOUT", 10*time.Second),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", SessionStoreFile)),
		SessionFile:        getEnv("SESSION_FILE", "./state/session.json"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "admin-panel:session:"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 4)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 0)),
		ConsoleID:          getEnv("CONSOLE_ID", "default"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 10),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL")
	}

	if !strings.HasPrefix(c.APIRefreshPath, "/") {
		return fmt.Errorf("API_REFRESH_PATH must start with /")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.RefreshTimeout <= 0 || c.LookupTimeout <= 0 {
		return fmt.Errorf("REFRESH_TIMEOUT and LOOKUP_TIMEOUT must be positive")
	}

	switch c.SessionStore {
	case SessionStoreFile:
		if strings.TrimSpace(c.SessionFile) == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty")
		}
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session store")
		}
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres session store")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of file, memory, redis, postgres (got %q)", c.SessionStore)
	}

	if strings.TrimSpace(c.ConsoleID) == "" {
		return fmt.Errorf("CONSOLE_ID cannot be empty")
	}

	return nil
}

// DevAPIConfig configures the development e-commerce backend.
type DevAPIConfig struct {
	Port          string
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	CORSOrigins   []string
	LogLevel      string
}

func LoadDevAPI() (*DevAPIConfig, error) {
	_ = godotenv.Load()

	cfg := &DevAPIConfig{
		Port:          getEnv("DEVAPI_PORT", "9090"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:  getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: getDuration("JWT_REFRESH_TTL", 168*time.Hour),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "*")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *DevAPIConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Port == "" {
		return fmt.Errorf("DEVAPI_PORT cannot be empty")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
