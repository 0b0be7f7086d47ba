package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Debounce window bounds for the listing search box.
const (
	MinSearchDebounceMs = 300
	MaxSearchDebounceMs = 500
)

// Config holds process-wide settings. Every field can be set from the
// environment; .env and .env.local in the working directory are read first.
type Config struct {
	APIURL           string `env:"HRDESK_API_URL" envDefault:"http://localhost:8080/api/v1" validate:"required,url"`
	DBPath           string `env:"HRDESK_DB"`
	TimeoutMs        int    `env:"HRDESK_TIMEOUT_MS" envDefault:"15000" validate:"gt=0"`
	SearchDebounceMs int    `env:"HRDESK_SEARCH_DEBOUNCE_MS" envDefault:"400"`
	PageSize         int    `env:"HRDESK_PAGE_SIZE" envDefault:"10" validate:"min=1,max=500"`
	LogoutOn401      bool   `env:"HRDESK_LOGOUT_ON_401" envDefault:"false"`
	TenantClaim      string `env:"HRDESK_TENANT_CLAIM" envDefault:"tenantId" validate:"required"`
	RoleClaim        string `env:"HRDESK_ROLE_CLAIM" envDefault:"role" validate:"required"`
	LogLevel         string `env:"HRDESK_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFile          string `env:"HRDESK_LOG_FILE"`
	ScreensFile      string `env:"HRDESK_SCREENS_FILE"`
}

// DefaultConfig returns the configuration used when the environment sets
// nothing.
func DefaultConfig() Config {
	home := homeDir()
	return Config{
		APIURL:           "http://localhost:8080/api/v1",
		DBPath:           filepath.Join(home, "hrdesk.db"),
		TimeoutMs:        15000,
		SearchDebounceMs: 400,
		PageSize:         10,
		TenantClaim:      "tenantId",
		RoleClaim:        "role",
		LogLevel:         "info",
		LogFile:          filepath.Join(home, "hrdesk.log"),
	}
}

// Load reads envFiles that exist (defaulting to .env and .env.local), then
// parses the environment over the defaults and validates the result.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, fmt.Errorf("loading env files: %w", err)
	}

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultConfig().DBPath
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultConfig().LogFile
	}
	cfg.SearchDebounceMs = clamp(cfg.SearchDebounceMs, MinSearchDebounceMs, MaxSearchDebounceMs)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SearchDebounce returns the search debounce window.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(clamp(c.SearchDebounceMs, MinSearchDebounceMs, MaxSearchDebounceMs)) * time.Millisecond
}

// godotenv.Load does not override variables already set, so the real
// environment wins over files.
func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hrdesk"
	}
	return filepath.Join(home, ".hrdesk")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
