package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedOrigins are the local development front-end origins.
const DefaultAllowedOrigins = "http://localhost:5173,http://localhost:5174"

// CORSConfig holds the browser cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAgeSec        int
}

// UploadConfig bounds the resources a single unlock request may use.
type UploadConfig struct {
	MaxBytes          int
	ProcessingTimeout time.Duration
}

// ServerConfig holds HTTP server timeouts.
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is built once at process start from environment variables and never mutated.
type AppConfig struct {
	AppHost        string
	Port           string
	Location       *time.Location
	MetricsEnabled bool
	CORS           CORSConfig
	Upload         UploadConfig
	Server         ServerConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8000"),
		Port:           getEnv("PORT", "8000"),
		Location:       getEnvLocation("TIMEZONE", time.UTC),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		CORS: CORSConfig{
			AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAgeSec:        getEnvInt("CORS_MAX_AGE_SEC", 600),
		},
		Upload: UploadConfig{
			MaxBytes:          getEnvInt("MAX_UPLOAD_BYTES", 32<<20),
			ProcessingTimeout: getEnvSeconds("PROCESSING_TIMEOUT_SEC", 30),
		},
		Server: ServerConfig{
			ReadTimeout:     getEnvSeconds("READ_TIMEOUT_SEC", 60),
			WriteTimeout:    getEnvSeconds("WRITE_TIMEOUT_SEC", 60),
			ShutdownTimeout: getEnvSeconds("SHUTDOWN_TIMEOUT_SEC", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvSeconds(key string, def int) time.Duration {
	return time.Duration(getEnvInt(key, def)) * time.Second
}

// getEnvList splits a comma separated value, dropping blanks.
// A variable that is set but empty yields an empty list rather than def.
func getEnvList(key, def string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		v = def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvLocation(key string, def *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			return loc
		}
	}
	return def
}
