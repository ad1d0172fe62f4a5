// Package config builds the runtime configuration with precedence
// defaults → YAML file → environment → CLI overrides.
package config

import "time"

type Config struct {
	Version  int    `yaml:"version"`
	StateDir string `yaml:"state_dir"`

	OpenAI OpenAI `yaml:"openai"`
	Ingest Ingest `yaml:"ingest"`
	Report Report `yaml:"report"`
}

type OpenAI struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	ExtractModel   string `yaml:"extract_model"`
	ReportModel    string `yaml:"report_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Ingest struct {
	Folder string `yaml:"folder"`
	// KeyOnContentOnly keys document identity on the content hash alone,
	// so a renamed file keeps its extraction. Default is path+content
	// keying, where a rename is a new document.
	KeyOnContentOnly bool `yaml:"key_on_content_only"`
}

type Report struct {
	MaxTurns      int    `yaml:"max_turns"`
	SchemaRetries int    `yaml:"schema_retries"`
	SearchResults int    `yaml:"search_results"`
	OutDir        string `yaml:"out_dir"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:  1,
		StateDir: ".outlook",
		OpenAI: OpenAI{
			BaseURL:        "https://api.openai.com/v1",
			ExtractModel:   "gpt-5-mini",
			ReportModel:    "gpt-5",
			TimeoutSeconds: 90,
		},
		Ingest: Ingest{
			Folder: "documents",
		},
		Report: Report{
			MaxTurns:      16,
			SchemaRetries: 2,
			SearchResults: 6,
			OutDir:        "reports",
		},
	}
}

// Timeout returns the per-call API timeout.
func (o OpenAI) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}
