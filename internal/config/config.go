package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"

	"github.com/joho/godotenv"
)

// Storage backends understood by STORAGE_BACKEND
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	AppPort        string
	Version        string
	StorageBackend string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	KeyNamespace   string
	JWTSecret      string
	AdminUsernames []string
	AllowedOrigin  string

	LogLevel string
	LogJSON  bool

	// Energy recovery / auto-tap poll interval per live session
	EnergyTick time.Duration

	// Rate limits
	APIRateLimit  int
	APIRateWindow time.Duration
	TapRateLimit  int
	TapRateWindow time.Duration
}

// Load reads the configuration from the environment (and .env if present)
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	if backend == "" {
		backend = StorageMemory
	}

	dbURL := os.Getenv("DATABASE_URL")
	if backend == StoragePostgres && dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if backend == StorageRedis && redisAddr == "" {
		logger.Fatal("REDIS_ADDR is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	namespace := os.Getenv("KEY_NAMESPACE")
	if namespace == "" {
		namespace = "robotap:"
	}

	// admin usernames, comma separated
	var admins []string
	for _, name := range strings.Split(os.Getenv("ADMIN_USERNAMES"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			admins = append(admins, name)
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	// the poll interval must not exceed one second
	tick := envDurationMs("ENERGY_TICK_MS", time.Second)
	if tick > time.Second {
		tick = time.Second
	}

	return &Config{
		AppPort:        port,
		Version:        os.Getenv("APP_VERSION"),
		StorageBackend: backend,
		DatabaseURL:    dbURL,
		RedisAddr:      redisAddr,
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		KeyNamespace:   namespace,
		JWTSecret:      jwtSecret,
		AdminUsernames: admins,
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:       logLevel,
		LogJSON:        os.Getenv("LOG_JSON") == "true",
		EnergyTick:     tick,
		APIRateLimit:   envInt("API_RATE_LIMIT", 120),
		APIRateWindow:  time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		TapRateLimit:   envInt("TAP_RATE_LIMIT", 1200),
		TapRateWindow:  time.Duration(envInt("TAP_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

// IsAdmin reports whether username is listed in ADMIN_USERNAMES
func (c *Config) IsAdmin(username string) bool {
	for _, a := range c.AdminUsernames {
		if strings.EqualFold(a, username) {
			return true
		}
	}
	return false
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDurationMs(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}
