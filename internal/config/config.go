package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level rojournal.yaml configuration.
type Config struct {
	Company  CompanyConfig  `yaml:"company"`
	Accounts AccountsConfig `yaml:"accounts"`
	Schema   SchemaConfig   `yaml:"schema"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
	Audit    AuditConfig    `yaml:"audit"`
}

// CompanyConfig identifies the reporting company.
type CompanyConfig struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	VAT      string `yaml:"vat"`
	Currency string `yaml:"currency"`
}

// AccountsConfig locates the structural accounts the report relies on.
type AccountsConfig struct {
	// ControlPrefixes are the receivable/payable control account code
	// prefixes ("411" receivable, "401" payable).
	ControlPrefixes []string `yaml:"control_prefixes"`
	// CashBasisJournal is the code of the clearing journal where
	// cash-basis settlement entries are posted.
	CashBasisJournal string `yaml:"cash_basis_journal"`
}

// SchemaConfig controls column schema validation.
type SchemaConfig struct {
	// Strict makes a duplicate tag binding fatal instead of logged.
	Strict bool `yaml:"strict"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn,omitempty"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxIdleTime  string `yaml:"max_idle_time"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// AuditConfig controls the CSV audit trail of schema collisions and
// multi-column tag applications.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Load reads a rojournal.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new company.
func Default(companyName, vat string) *Config {
	return &Config{
		Company: CompanyConfig{
			ID:       1,
			Name:     companyName,
			VAT:      vat,
			Currency: "RON",
		},
		Accounts: AccountsConfig{
			ControlPrefixes:  []string{"411", "401"},
			CashBasisJournal: "TVAI",
		},
		Schema: SchemaConfig{
			Strict: false,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			MaxIdleTime:  "15m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Audit: AuditConfig{
			Enabled: false,
		},
	}
}
