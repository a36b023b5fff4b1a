package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type App struct {
	Port            string
	Development     bool
	LogFile         string
	AllowedOrigins  []string
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Game            Game
}

// Load reads the given env files (.env by default, missing files are fine)
// and then the process environment.
func Load(filenames ...string) (*App, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, f := range filenames {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load %s: %w", f, err)
		}
	}

	cleanup, err := lookupDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	if cleanup <= 0 {
		return nil, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive")
	}

	// zero keeps idle sessions around
	idle, err := lookupDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	if idle < 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}

	game, err := NewGame()
	if err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	return &App{
		Port:            Port(),
		Development:     Development(),
		LogFile:         os.Getenv("LOG_FILE"),
		AllowedOrigins:  AllowedOrigins(),
		CleanupInterval: cleanup,
		IdleTimeout:     idle,
		Game:            *game,
	}, nil
}

// Development is on when DEVELOPMENT is set to anything but "0".
func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// AllowedOrigins reads the comma separated CORS_ALLOWED_ORIGINS.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}

func lookupInt(name string, fallback int) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an int: %w", name, err)
	}
	return v, nil
}

func lookupDuration(name string, fallback time.Duration) (time.Duration, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", name, err)
	}
	return v, nil
}
