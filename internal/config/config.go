// Package config loads yuuka.yaml and overlays environment variables from the
// process and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arung-agamani/yuuka/internal/model"
)

// DefaultPath is where the CLI looks for the config file.
const DefaultPath = "yuuka.yaml"

// Config represents the top-level yuuka.yaml configuration.
type Config struct {
	Database       DatabaseConfig  `yaml:"database"`
	Owner          OwnerConfig     `yaml:"owner"`
	SystemAccounts []SystemAccount `yaml:"system_accounts"`
	Inference      InferenceConfig `yaml:"inference,omitempty"`
	Server         ServerConfig    `yaml:"server"`
	Import         ImportConfig    `yaml:"import"`
	Debug          bool            `yaml:"debug,omitempty"`
}

// DatabaseConfig locates the SQLite file and bounds lock waits.
type DatabaseConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"` // e.g. "10s"
}

// OwnerConfig names the owner used when a command does not pass one.
type OwnerConfig struct {
	Default string `yaml:"default"`
}

// SystemAccount is a group created for every owner on first use.
type SystemAccount struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

// InferenceConfig overrides the keyword lists used to guess account types.
// An empty list keeps the built-in keywords for that type.
type InferenceConfig struct {
	Revenue   []string `yaml:"revenue,omitempty"`
	Expense   []string `yaml:"expense,omitempty"`
	Asset     []string `yaml:"asset,omitempty"`
	Liability []string `yaml:"liability,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ImportConfig controls bank CSV imports.
type ImportConfig struct {
	BankAccount string `yaml:"bank_account"` // account name the bank rows post against
	InboxDir    string `yaml:"inbox_dir"`
}

// Keywords returns the overridden lists keyed by account type.
func (c InferenceConfig) Keywords() map[model.AccountType][]string {
	out := make(map[model.AccountType][]string)
	for t, kws := range map[model.AccountType][]string{
		model.AccountTypeRevenue:   c.Revenue,
		model.AccountTypeExpense:   c.Expense,
		model.AccountTypeAsset:     c.Asset,
		model.AccountTypeLiability: c.Liability,
	} {
		if len(kws) > 0 {
			out[t] = kws
		}
	}
	return out
}

// Load reads a yuuka.yaml file from disk. Fields missing from the file keep
// their defaults.
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

// LoadWithEnv loads path (or the defaults when the file does not exist),
// overlays the environment and validates the result. The .env file at
// envPath is loaded first; without envPath a .env in the working directory
// is used if present.
func LoadWithEnv(path string, envPath ...string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envPath...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from YUUKA_* environment variables.
func (c *Config) ApplyEnv(envPath ...string) error {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	c.Database.Path = getEnvOrDefault("YUUKA_DB_PATH", c.Database.Path)
	c.Owner.Default = getEnvOrDefault("YUUKA_OWNER", c.Owner.Default)
	c.Server.Addr = getEnvOrDefault("YUUKA_SERVER_ADDR", c.Server.Addr)
	c.Import.BankAccount = getEnvOrDefault("YUUKA_BANK_ACCOUNT", c.Import.BankAccount)

	if v := os.Getenv("YUUKA_BUSY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid YUUKA_BUSY_TIMEOUT %q: %w", v, err)
		}
		c.Database.BusyTimeout = d
	}
	if v := os.Getenv("YUUKA_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid YUUKA_DEBUG %q: %w", v, err)
		}
		c.Debug = b
	}
	return nil
}

// Validate checks the settings the engines depend on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	if c.Database.BusyTimeout <= 0 {
		return fmt.Errorf("database.busy_timeout must be positive, got %s", c.Database.BusyTimeout)
	}
	names := make(map[string]bool)
	for _, sa := range c.SystemAccounts {
		n := model.NormalizeName(sa.Name)
		if n == "" {
			return errors.New("system_accounts: name is required")
		}
		if _, err := model.ParseAccountType(sa.Type); err != nil {
			return fmt.Errorf("system_accounts %q: %w", sa.Name, err)
		}
		names[n] = true
	}
	if len(c.SystemAccounts) > 0 && (!names["income"] || !names["expense"]) {
		return errors.New("system_accounts must include Income and Expense")
	}
	return nil
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

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "data/yuuka.db",
			BusyTimeout: 10 * time.Second,
		},
		SystemAccounts: []SystemAccount{
			{Name: "Income", Type: "revenue", Description: "Default income account"},
			{Name: "Expense", Type: "expense", Description: "Default expense account"},
			{Name: "Cash", Type: "asset", Description: "Default cash/wallet account"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Import: ImportConfig{
			BankAccount: "bank",
			InboxDir:    "inbox",
		},
	}
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
