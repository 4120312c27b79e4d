// Package config provides application configuration loaded from environment variables.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path  string
	Debug bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Templates     string
	MaxImageBytes int
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Timeouts returns read, write and idle timeouts.
func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return seconds(s.ReadTimeout), seconds(s.WriteTimeout), seconds(s.IdleTimeout)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local use.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Path:  getEnv("INVOICE_DB_PATH", DefaultPath()),
			Debug: getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", false),
			Templates:     getEnv("INVOICE_TEMPLATES", ""),
			MaxImageBytes: getEnvInt("MAX_IMAGE_BYTES", 1_000_000),
		},
	}
}

// DefaultPath is <user config dir>/invoice-cli/invoice-cli.db, falling back
// to the home directory and finally the working directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "invoice-cli.db"
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "invoice-cli", "invoice-cli.db")
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("invalid integer for %s: %s", key, value)
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
