package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/gastos/internal/catalog"
	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/slot"
)

// FileName is the config file name inside a project directory.
const FileName = "gastos.yaml"

// Environment variables that override file values.
const (
	EnvDataDir  = "GASTOS_DATA_DIR"
	EnvStorage  = "GASTOS_STORAGE"
	EnvAddr     = "GASTOS_ADDR"
	EnvLogLevel = "GASTOS_LOG_LEVEL"
)

// Server modes, matching gin's.
var serverModes = []string{"debug", "release", "test"}

var logFormats = []string{"console", "json"}

// Config represents the top-level gastos.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects the durable slot backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite or memory
	Dir     string `yaml:"dir"`     // relative paths resolve against the project directory
	Key     string `yaml:"key"`
}

// LedgerConfig holds entry defaults.
type LedgerConfig struct {
	DefaultTaxRate decimal.Decimal `yaml:"default_tax_rate"`
	Crew           []string        `yaml:"crew"`
}

// ServerConfig controls the HTTP shell.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Offline bool   `yaml:"offline"`
	Mode    string `yaml:"mode"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: slot.BackendFile,
			Dir:     "data",
			Key:     ledger.DefaultKey,
		},
		Ledger: LedgerConfig{
			DefaultTaxRate: decimal.NewFromInt(7),
			Crew:           slices.Clone(catalog.DefaultCrew),
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a gastos.yaml file from disk. Fields the file omits keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDotEnv loads dir/.env into the process environment if it exists.
// Variables already set are not overridden.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Storage.Dir = v
	}
	if v, ok := lookup(EnvStorage); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// DataDir returns the storage directory, resolving a relative one against root.
func (c *Config) DataDir(root string) string {
	if filepath.IsAbs(c.Storage.Dir) {
		return c.Storage.Dir
	}
	return filepath.Join(root, c.Storage.Dir)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(slot.Backends, c.Storage.Backend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of %v", c.Storage.Backend, slot.Backends))
	}
	if c.Storage.Backend != slot.BackendMemory && strings.TrimSpace(c.Storage.Dir) == "" {
		problems = append(problems, "storage dir cannot be empty")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		problems = append(problems, "storage key cannot be empty")
	}

	if !model.InRange(c.Ledger.DefaultTaxRate) {
		problems = append(problems, fmt.Sprintf("invalid default tax rate: exponent %d out of range", c.Ledger.DefaultTaxRate.Exponent()))
	} else if c.Ledger.DefaultTaxRate.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid default tax rate %s: must not be negative", c.Ledger.DefaultTaxRate))
	}
	seen := make(map[string]bool, len(c.Ledger.Crew))
	for _, name := range c.Ledger.Crew {
		switch {
		case strings.TrimSpace(name) == "":
			problems = append(problems, "crew names cannot be empty")
		case seen[name]:
			problems = append(problems, fmt.Sprintf("duplicate crew name %q", name))
		}
		seen[name] = true
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server addr cannot be empty")
	}
	if !slices.Contains(serverModes, c.Server.Mode) {
		problems = append(problems, fmt.Sprintf("invalid server mode %q: must be one of %v", c.Server.Mode, serverModes))
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be one of %v", c.Log.Format, logFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
