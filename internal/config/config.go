package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultDefineURL  = "http://localhost:8000"
	DefaultTimeout    = 10 * time.Second
	DefaultDebounce   = 300 * time.Millisecond
	DefaultServerAddr = ":8000"
	DefaultModel      = "gemini-1.5-flash"
	DefaultDebugLog   = "zoom-debug.log"
)

// ErrMissingAPIKey is returned by RequireAPIKey when GOOGLE_API_KEY is unset
// or still holds the placeholder from the sample .env file.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is required")

const apiKeyPlaceholder = "your_api_key_here"

// Config holds the settings shared by the reader and the definition service.
type Config struct {
	// Reader
	DefineURL    string
	Timeout      time.Duration
	Debounce     time.Duration
	DiscardStale bool
	Debug        bool
	DebugLog     string

	// Definition service
	ServerAddr string
	APIKey     string
	Model      string
}

// Load reads configuration from environment variables and returns a Config struct.
// A .env file in the current directory or one of its parents is loaded first;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DefineURL:  getEnv("ZOOM_DEFINE_URL", DefaultDefineURL),
		DebugLog:   getEnv("ZOOM_DEBUG_LOG", DefaultDebugLog),
		ServerAddr: getEnv("ZOOMD_ADDR", DefaultServerAddr),
		APIKey:     getEnv("GOOGLE_API_KEY", ""),
		Model:      getEnv("ZOOMD_MODEL", DefaultModel),
	}

	var err error
	if cfg.Timeout, err = getDuration("ZOOM_TIMEOUT", DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.Debounce, err = getDuration("ZOOM_DEBOUNCE", DefaultDebounce); err != nil {
		return nil, err
	}
	if cfg.DiscardStale, err = getBool("ZOOM_DISCARD_STALE"); err != nil {
		return nil, err
	}
	if cfg.Debug, err = getBool("ZOOM_DEBUG"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireAPIKey validates the settings the definition service cannot run without.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" || c.APIKey == apiKeyPlaceholder {
		return ErrMissingAPIKey
	}
	return nil
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func getBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
