// =============================================================================
// Invoice Sync - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration. A single YAML file holds every setting; any key can be
// overridden from the environment with the INVOICE_SYNC_ prefix, e.g.
//
//   INVOICE_SYNC_LEDGER_PASSWORD=secret
//   INVOICE_SYNC_SYNC_INDEX_POLICY=fail-closed
//
// CONFIGURATION SECTIONS:
//   source   : where the invoice table comes from and its fixed layout
//   ledger   : remote ledger endpoint and credentials
//   sync     : index policy, worker count and balancing tolerance
//   log      : console verbosity
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "INVOICE_SYNC"

// Index policies.
const (
	// PolicyFailOpen treats a failed index query as an empty index, so every
	// invoice goes to the create path. Duplicate creates become possible if
	// the ledger already holds some of them.
	PolicyFailOpen = "fail-open"

	// PolicyFailClosed aborts the run when the index query fails.
	PolicyFailClosed = "fail-closed"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete application configuration.
type Config struct {
	Source              SourceConfig         `mapstructure:"source" yaml:"source"`
	Ledger              LedgerConfig         `mapstructure:"ledger" yaml:"ledger"`
	Sync                SyncConfig           `mapstructure:"sync" yaml:"sync"`
	Log                 LogConfig            `mapstructure:"log" yaml:"log"`
	TransformationRules []TransformationRule `mapstructure:"transformation_rules" yaml:"transformation_rules,omitempty"`

	// ArchiveDir receives the input file after a run without failures.
	// Empty disables archival.
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`

	// ArchiveDateSubdirs files archived inputs under YYYY/MM/DD.
	ArchiveDateSubdirs bool `mapstructure:"archive_date_subdirs" yaml:"archive_date_subdirs"`

	// ReportDir receives a plain-text report of every sync run.
	// Empty disables reports.
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`

	// ConfigPath is the file the configuration was read from, if any.
	ConfigPath string `mapstructure:"-" yaml:"-"`
}

// SourceConfig describes the input table.
type SourceConfig struct {
	// Path is the workbook (.xlsx) or CSV file to read.
	Path string `mapstructure:"path" yaml:"path"`

	// SheetIndex selects the worksheet (0-based). Ignored for CSV.
	// Default: 1 (the second sheet)
	SheetIndex int `mapstructure:"sheet_index" yaml:"sheet_index"`

	// DataStartRow is the 1-based row where invoice lines begin.
	// Rows above it are titles and column headers.
	// Default: 4
	DataStartRow int `mapstructure:"data_start_row" yaml:"data_start_row"`

	// Encoding applies to CSV input only.
	// Supported: "UTF-8", "ISO-8859-1", "Windows-1252"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// Delimiter applies to CSV input only. A single character, or one of
	// "tab", "pipe" and "semicolon".
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// DelimiterRune resolves Delimiter to the separator rune. Empty means comma.
func (s SourceConfig) DelimiterRune() (rune, error) {
	switch s.Delimiter {
	case "":
		return ',', nil
	case "\\t", "tab", "TAB":
		return '\t', nil
	case "pipe", "PIPE":
		return '|', nil
	case "semicolon", "SEMICOLON":
		return ';', nil
	}

	r, size := utf8.DecodeRuneInString(s.Delimiter)
	if r == utf8.RuneError || size != len(s.Delimiter) {
		return 0, fmt.Errorf("source.delimiter must be a single character, got %q", s.Delimiter)
	}
	return r, nil
}

// LedgerConfig holds the remote ledger endpoint settings.
type LedgerConfig struct {
	// BaseURL is the API root, e.g. "http://10.0.0.5:8080/api/1".
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Register is the invoice register name appended to BaseURL.
	// Default: "VIVc"
	Register string `mapstructure:"register" yaml:"register"`

	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Timeout bounds the whole run's network session, e.g. "20m".
	Timeout string `mapstructure:"timeout" yaml:"timeout"`

	// EncodeRowFields URL-encodes line fields like header fields. The
	// deployed ledger receives them raw; enabling this changes the wire format.
	EncodeRowFields bool `mapstructure:"encode_row_fields" yaml:"encode_row_fields"`
}

// SyncConfig controls the sync engine.
type SyncConfig struct {
	// IndexPolicy is PolicyFailOpen or PolicyFailClosed.
	IndexPolicy string `mapstructure:"index_policy" yaml:"index_policy"`

	// Workers is the number of invoices synced concurrently.
	// Set to 1 for sequential processing.
	// Default: 1
	Workers int `mapstructure:"workers" yaml:"workers"`

	// Tolerance is the largest accepted difference between line total and
	// payable value after reconciliation.
	// Default: "0.01"
	Tolerance string `mapstructure:"tolerance" yaml:"tolerance"`

	// Confirm asks before creating invoices when running interactively.
	Confirm bool `mapstructure:"confirm" yaml:"confirm"`
}

// LogConfig controls console output.
type LogConfig struct {
	// Level: "debug", "info", "warn", "error". Default: "info"
	Level string `mapstructure:"level" yaml:"level"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines transformations applied to a text field of each
// row before aggregation. Field names: invoice_number, vendor_code,
// payment_terms, signer, cost_object, prelim_booking, source_code,
// account_number, detail_cost_object, tax_code, article_code, period_code.
type TransformationRule struct {
	Field   string                 `mapstructure:"field" yaml:"field"`
	Actions []TransformationAction `mapstructure:"actions" yaml:"actions"`
}

// TransformationAction defines a single transformation action.
//
// Supported types:
//   - "trim", "uppercase", "lowercase"
//   - "prepend_string" / "append_string" : Value is the text
//   - "pad_zeros_to_length"              : Value is the target length
//   - "remove_leading_zeros"
//   - "replace"                          : Find -> Value
//   - "regex_replace"                    : Find is the pattern
//   - "lookup"                           : LookupTable maps old -> new
type TransformationAction struct {
	Type        string            `mapstructure:"type" yaml:"type"`
	Value       string            `mapstructure:"value" yaml:"value,omitempty"`
	Find        string            `mapstructure:"find" yaml:"find,omitempty"`
	LookupTable map[string]string `mapstructure:"lookup_table" yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Sync: SyncConfig{Confirm: true}}
	cfg.Source.SheetIndex = -1
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file to read. When empty, "config.yaml" in the
//     working directory is used if present; a missing default file is not an
//     error (environment variables alone may configure a run).
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setViperDefaults registers every key so AutomaticEnv can override keys the
// file does not mention.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("source.path", "")
	v.SetDefault("source.sheet_index", 1)
	v.SetDefault("source.data_start_row", 4)
	v.SetDefault("source.encoding", "UTF-8")
	v.SetDefault("source.delimiter", ",")
	v.SetDefault("ledger.base_url", "")
	v.SetDefault("ledger.register", "VIVc")
	v.SetDefault("ledger.username", "")
	v.SetDefault("ledger.password", "")
	v.SetDefault("ledger.timeout", "20m")
	v.SetDefault("ledger.encode_row_fields", false)
	v.SetDefault("sync.index_policy", PolicyFailOpen)
	v.SetDefault("sync.workers", 1)
	v.SetDefault("sync.tolerance", "0.01")
	v.SetDefault("sync.confirm", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("archive_dir", "")
	v.SetDefault("archive_date_subdirs", false)
	v.SetDefault("report_dir", "")
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Source.SheetIndex < 0 {
		cfg.Source.SheetIndex = 1
	}
	if cfg.Source.DataStartRow == 0 {
		cfg.Source.DataStartRow = 4
	}
	if cfg.Source.Encoding == "" {
		cfg.Source.Encoding = "UTF-8"
	}
	if cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = ","
	}
	if cfg.Ledger.Register == "" {
		cfg.Ledger.Register = "VIVc"
	}
	if cfg.Ledger.Timeout == "" {
		cfg.Ledger.Timeout = "20m"
	}
	if cfg.Sync.IndexPolicy == "" {
		cfg.Sync.IndexPolicy = PolicyFailOpen
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 1
	}
	if cfg.Sync.Tolerance == "" {
		cfg.Sync.Tolerance = "0.01"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the values that can be checked without touching the
// network or the file system.
func (c *Config) Validate() error {
	if c.Source.DataStartRow < 1 {
		return fmt.Errorf("source.data_start_row must be >= 1, got %d", c.Source.DataStartRow)
	}
	if _, err := c.Source.DelimiterRune(); err != nil {
		return err
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync.workers must be >= 1, got %d", c.Sync.Workers)
	}
	switch c.Sync.IndexPolicy {
	case PolicyFailOpen, PolicyFailClosed:
	default:
		return fmt.Errorf("sync.index_policy must be %q or %q, got %q", PolicyFailOpen, PolicyFailClosed, c.Sync.IndexPolicy)
	}
	if _, err := c.SessionTimeout(); err != nil {
		return err
	}
	if _, err := c.BalanceTolerance(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// ValidateLedger checks the settings a networked command needs.
func (c *Config) ValidateLedger() error {
	if c.Ledger.BaseURL == "" {
		return errors.New("ledger.base_url is required")
	}
	if c.Ledger.Username == "" || c.Ledger.Password == "" {
		return fmt.Errorf("ledger credentials missing: set ledger.username/ledger.password or %s_LEDGER_USERNAME/%s_LEDGER_PASSWORD", EnvPrefix, EnvPrefix)
	}
	return nil
}

// SessionTimeout parses Ledger.Timeout.
func (c *Config) SessionTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Ledger.Timeout)
	if err != nil {
		return 0, fmt.Errorf("ledger.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ledger.timeout must be positive, got %s", c.Ledger.Timeout)
	}
	return d, nil
}

// BalanceTolerance parses Sync.Tolerance.
func (c *Config) BalanceTolerance() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Sync.Tolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sync.tolerance: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("sync.tolerance must not be negative, got %s", c.Sync.Tolerance)
	}
	return d, nil
}

// =============================================================================
// CONFIGURATION WRITING
// =============================================================================

// WriteDefault writes a starter configuration file to path. An existing file
// is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	cfg := Default()
	cfg.Ledger.BaseURL = "http://localhost:8080/api/1"
	cfg.TransformationRules = []TransformationRule{
		{Field: "vendor_code", Actions: []TransformationAction{{Type: "trim"}, {Type: "uppercase"}}},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
