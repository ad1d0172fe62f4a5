package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file looked for when no --config flag is
// given.
const DefaultConfigPath = "outlook.yaml"

// Options for loading config. ConfigPath is relative to the working
// directory when not absolute.
type Options struct {
	ConfigPath   string
	SkipValidate bool
	// Overrides apply last (flags > env > file > defaults). Nil fields are
	// ignored.
	Overrides *Overrides
}

// Overrides holds CLI flag values that take precedence over env, file and
// defaults.
type Overrides struct {
	StateDir *string
	Folder   *string
}

// Load builds the config with precedence defaults → YAML → env → overrides.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Optional local dotenv files. Explicit env wins over both.
	for _, path := range []string{".env.local", ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: failed loading %s: %w", path, err)
		}
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", configPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", configPath, err)
		}
	}

	applyEnv(&cfg)

	if opts.Overrides != nil {
		if opts.Overrides.StateDir != nil {
			cfg.StateDir = *opts.Overrides.StateDir
		}
		if opts.Overrides.Folder != nil {
			cfg.Ingest.Folder = *opts.Overrides.Folder
		}
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("MODEL_ATTR_EXTRACT"); v != "" {
		cfg.OpenAI.ExtractModel = v
	}
	if v := os.Getenv("MODEL_REPORT"); v != "" {
		cfg.OpenAI.ReportModel = v
	}
	if v := os.Getenv("FILE_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Report.SearchResults = n
		}
	}
	if v := os.Getenv("OUTLOOK_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
}

// Validate checks required fields and ranges. Errors carry an actionable
// message so the CLI can exit 2 with it directly.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("CONFIG_INVALID: nil config")
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("CONFIG_INVALID: Missing OPENAI_API_KEY\nSet env: OPENAI_API_KEY=...\nOr add openai.api_key to %s", DefaultConfigPath)
	}
	if cfg.StateDir == "" {
		return fmt.Errorf("CONFIG_INVALID: state_dir must not be empty")
	}
	if cfg.OpenAI.ExtractModel == "" || cfg.OpenAI.ReportModel == "" {
		return fmt.Errorf("CONFIG_INVALID: openai.extract_model and openai.report_model must be set")
	}
	if cfg.OpenAI.TimeoutSeconds <= 0 {
		return fmt.Errorf("CONFIG_INVALID: openai.timeout_seconds must be positive")
	}
	if cfg.Report.MaxTurns <= 0 || cfg.Report.SchemaRetries < 0 {
		return fmt.Errorf("CONFIG_INVALID: report.max_turns must be positive and report.schema_retries non-negative")
	}
	return nil
}

// LedgerPath returns the sidecar ledger location under the state dir.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.StateDir, "ledger.json")
}

// RunLogPath returns the run-history database location under the state dir.
func (c *Config) RunLogPath() string {
	return filepath.Join(c.StateDir, "runs.sqlite")
}
