package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Console ConsoleConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port       int
	MCPEnabled bool
}

// BackendConfig points at the knowledge-base review backend. The two dataset
// ids tell the unreviewed pool from the reviewed documents on update and
// delete calls.
type BackendConfig struct {
	BaseURL             string
	UnreviewedDatasetID string
	ReviewedDatasetID   string
}

type ConsoleConfig struct {
	PageSize           int
	FlushConcurrency   int
	CountConcurrency   int
	RecheckDelay       string
	DuplicateThreshold int // percent
	Timezone           string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL:             "http://127.0.0.1:5001",
			UnreviewedDatasetID: "1397b9d1-8e25-4269-ba12-046059a425b6",
			ReviewedDatasetID:   "2df8ca5b-ac31-4dba-8b48-fc09f678b62d",
		},
		Console: ConsoleConfig{
			PageSize:           20,
			FlushConcurrency:   8,
			CountConcurrency:   6,
			RecheckDelay:       "500ms",
			DuplicateThreshold: 80,
			Timezone:           "Asia/Shanghai",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/qareview/config.json, then applies QAREVIEW_* environment
// overrides and validates the result.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee
// once the file and environment have been applied.
func (c Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if c.Backend.UnreviewedDatasetID == "" || c.Backend.ReviewedDatasetID == "" {
		problems = append(problems, "backend dataset ids must not be empty")
	} else if c.Backend.UnreviewedDatasetID == c.Backend.ReviewedDatasetID {
		problems = append(problems, "backend.unreviewed_dataset_id and backend.reviewed_dataset_id must differ")
	}
	if c.Console.PageSize < 1 {
		problems = append(problems, "console.page_size must be at least 1")
	}
	if c.Console.DuplicateThreshold < 0 || c.Console.DuplicateThreshold > 100 {
		problems = append(problems, "console.duplicate_threshold must be within 0-100")
	}
	if _, err := time.ParseDuration(c.Console.RecheckDelay); err != nil {
		problems = append(problems, fmt.Sprintf("console.recheck_delay: %v", err))
	}
	if _, err := time.LoadLocation(c.Console.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("console.timezone: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RecheckDelayDuration returns the pause before a duplicate re-check.
// Validate guarantees the value parses.
func (c ConsoleConfig) RecheckDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.RecheckDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// Location returns the display time zone, falling back to local time.
func (c ConsoleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
