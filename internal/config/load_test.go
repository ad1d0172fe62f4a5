package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "MODEL_ATTR_EXTRACT",
		"MODEL_REPORT", "FILE_SEARCH_MAX_RESULTS", "OUTLOOK_STATE_DIR",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("api key = %q", cfg.OpenAI.APIKey)
	}
	if cfg.StateDir != ".outlook" || cfg.OpenAI.ReportModel != "gpt-5" || cfg.Report.MaxTurns != 16 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingKeyFails(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	_, err := Load(Options{})
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("err = %v, want missing-key message", err)
	}
}

func TestLoadYAMLThenEnvThenOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	yamlBody := `
state_dir: /var/lib/outlook
openai:
  api_key: sk-file
  report_model: gpt-5
  extract_model: gpt-5-mini
  timeout_seconds: 30
ingest:
  folder: /data/earnings
  key_on_content_only: true
report:
  max_turns: 8
  schema_retries: 2
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")

	folder := "/data/override"
	cfg, err := Load(Options{Overrides: &Overrides{Folder: &folder}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env should beat file: %q", cfg.OpenAI.APIKey)
	}
	if cfg.Ingest.Folder != "/data/override" {
		t.Fatalf("override should beat file: %q", cfg.Ingest.Folder)
	}
	if cfg.StateDir != "/var/lib/outlook" || !cfg.Ingest.KeyOnContentOnly || cfg.Report.MaxTurns != 8 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.OpenAI.Timeout().Seconds() != 30 {
		t.Fatalf("timeout = %v", cfg.OpenAI.Timeout())
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte("openai: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")

	_, err := Load(Options{})
	if err == nil || !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Fatalf("err = %v, want CONFIG_INVALID", err)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-dotenv" {
		t.Fatalf("api key = %q", cfg.OpenAI.APIKey)
	}
}

func TestValidateRanges(t *testing.T) {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk"
	if err := Validate(&cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cfg.Report.MaxTurns = 0
	if err := Validate(&cfg); err == nil {
		t.Fatal("zero max_turns should fail")
	}
}
