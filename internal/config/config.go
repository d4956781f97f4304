package config

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	clearvueotel "github.com/basket/clearvue/internal/otel"
)

// LensConfig holds settings for the lens-quality analysis service.
type LensConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// IMEIConfig holds settings for the IMEI/TAC lookup service.
type IMEIConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CatalogConfig selects which test battery a run walks through.
type CatalogConfig struct {
	// Variant names a built-in battery: "iphone", "iphone_extended",
	// or "browser". Ignored when File is set.
	Variant string `yaml:"variant"`

	// File points at a custom catalog YAML; overrides Variant.
	File string `yaml:"file"`
}

type Config struct {
	HomeDir string `yaml:"-"`

	LogLevel string `yaml:"log_level"`

	Catalog CatalogConfig `yaml:"catalog"`
	Lens    LensConfig    `yaml:"lens"`
	IMEI    IMEIConfig    `yaml:"imei"`

	Otel clearvueotel.Config `yaml:"otel"`

	// RetentionReportsDays prunes stored reports older than N days.
	// 0 keeps reports forever.
	RetentionReportsDays int `yaml:"retention_reports_days"`

	// DemoMode labels runs performed off-device (the browser fallback's
	// device gate lets users bypass into demo mode; results are labelled).
	DemoMode bool `yaml:"demo_mode"`

	// FirstRun is set when no config.yaml existed yet.
	FirstRun bool `yaml:"-"`
}

// ConfigPath returns the path to config.yaml within the given home directory.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// DBPath returns the report store path within the given home directory.
func DBPath(homeDir string) string {
	return filepath.Join(homeDir, "clearvue.db")
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Catalog:  CatalogConfig{Variant: "iphone"},
		Lens: LensConfig{
			Endpoint:       "https://rhex.app/api/analyze-lens",
			TimeoutSeconds: 30,
		},
		IMEI: IMEIConfig{
			Endpoint:       "https://rhex.app/api/imei",
			TimeoutSeconds: 10,
		},
		RetentionReportsDays: 365,
	}
}

// HomeDir returns the data directory, honoring the CLEARVUE_HOME override.
func HomeDir() string {
	if override := os.Getenv("CLEARVUE_HOME"); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".clearvue")
}

// Load reads config.yaml from the home directory, applying env overrides
// and defaults. A missing file is not an error; FirstRun is set instead.
func Load() (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = HomeDir()

	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return cfg, fmt.Errorf("create clearvue home: %w", err)
	}

	data, err := os.ReadFile(ConfigPath(cfg.HomeDir))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.FirstRun = true
		} else {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
	} else if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Catalog.Variant == "" && cfg.Catalog.File == "" {
		cfg.Catalog.Variant = "iphone"
	}
	if cfg.Lens.Endpoint == "" {
		cfg.Lens.Endpoint = "https://rhex.app/api/analyze-lens"
	}
	if cfg.Lens.TimeoutSeconds <= 0 {
		cfg.Lens.TimeoutSeconds = 30
	}
	if cfg.IMEI.Endpoint == "" {
		cfg.IMEI.Endpoint = "https://rhex.app/api/imei"
	}
	if cfg.IMEI.TimeoutSeconds <= 0 {
		cfg.IMEI.TimeoutSeconds = 10
	}
	if cfg.RetentionReportsDays < 0 {
		cfg.RetentionReportsDays = 0
	}
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("CLEARVUE_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("CLEARVUE_CATALOG"); raw != "" {
		cfg.Catalog.Variant = raw
	}
	if raw := os.Getenv("CLEARVUE_CATALOG_FILE"); raw != "" {
		cfg.Catalog.File = raw
	}
	if raw := os.Getenv("CLEARVUE_LENS_URL"); raw != "" {
		cfg.Lens.Endpoint = raw
	}
	if raw := os.Getenv("CLEARVUE_IMEI_URL"); raw != "" {
		cfg.IMEI.Endpoint = raw
	}
	if raw := os.Getenv("CLEARVUE_RETENTION_REPORTS_DAYS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.RetentionReportsDays = v
		}
	}
	if raw := os.Getenv("CLEARVUE_DEMO_MODE"); raw != "" {
		cfg.DemoMode = raw == "1" || strings.EqualFold(raw, "true")
	}
}

// Fingerprint returns a stable hash of the active config, logged at startup
// so a support bundle shows which settings a run used.
func (c Config) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "log=%s|variant=%s|file=%s|lens=%s|imei=%s|retention=%d|demo=%v",
		c.LogLevel, c.Catalog.Variant, c.Catalog.File, c.Lens.Endpoint, c.IMEI.Endpoint,
		c.RetentionReportsDays, c.DemoMode)
	return fmt.Sprintf("cfg-%x", h.Sum64())
}

// Save writes the config back to config.yaml.
func Save(cfg Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config.yaml: %w", err)
	}
	return os.WriteFile(ConfigPath(cfg.HomeDir), out, 0o644)
}
