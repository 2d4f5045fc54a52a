package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string
	Port           string
	StorePath      string
	RequestTimeout time.Duration
	GetRetries     int
	NoticeTTL      time.Duration
	Debug          bool
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded settings from .env")
	}

	return &Config{
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8000"), "/"),
		Port:           getEnv("PORT", "3000"),
		StorePath:      getEnv("STORE_PATH", "data/session.db"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		GetRetries:     getEnvInt("GATEWAY_GET_RETRIES", 1),
		NoticeTTL:      getEnvDuration("NOTICE_TTL", 3*time.Second),
		Debug:          getEnvBool("DEBUG", false),
	}
}

// Debugf logs a formatted message only when DEBUG is enabled
func (c *Config) Debugf(format string, v ...interface{}) {
	if c != nil && c.Debug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
		log.Printf("WARNING: ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("WARNING: ignoring invalid %s=%q", key, value)
	return defaultValue
}
