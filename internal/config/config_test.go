package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Quiz.TimeLimitMinutes != 30 {
		t.Errorf("time limit = %d, want 30", cfg.Quiz.TimeLimitMinutes)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelayMs != 1000 {
		t.Errorf("retry = %+v, want 3 retries at 1000ms", cfg.Retry)
	}
	if cfg.Competency.AssessmentIntervalMonths != 6 {
		t.Errorf("interval = %d, want 6", cfg.Competency.AssessmentIntervalMonths)
	}
}

func TestYAMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
store:
  driver: json
  path: /tmp/data.json
quiz:
  time_limit_minutes: 15
retry:
  max_retries: 5
  base_delay_ms: 250
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != "json" || cfg.Store.Path != "/tmp/data.json" {
		t.Errorf("store = %+v, want json at /tmp/data.json", cfg.Store)
	}
	if cfg.Quiz.TimeLimitMinutes != 15 {
		t.Errorf("time limit = %d, want 15", cfg.Quiz.TimeLimitMinutes)
	}
	if cfg.RetryBaseDelay() != 250*time.Millisecond {
		t.Errorf("base delay = %v, want 250ms", cfg.RetryBaseDelay())
	}
	// Untouched sections keep their defaults.
	if cfg.Cache.QuestionTTLMinutes != 5 {
		t.Errorf("ttl = %d, want default 5", cfg.Cache.QuestionTTLMinutes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("quiz:\n  time_limit_minutes: 15\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COMPETENCES_TIME_LIMIT_MINUTES", "45")
	t.Setenv("COMPETENCES_STORE_DRIVER", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.TimeLimitMinutes != 45 {
		t.Errorf("time limit = %d, want env value 45", cfg.Quiz.TimeLimitMinutes)
	}
	if cfg.Store.Driver != "json" {
		t.Errorf("driver = %q, want env value json", cfg.Store.Driver)
	}
}

func TestInvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("COMPETENCES_RETRY_MAX", "lots")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("max retries = %d, want default 3", cfg.Retry.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"negative time limit", func(c *Config) { c.Quiz.TimeLimitMinutes = -1 }, true},
		{"zero base delay", func(c *Config) { c.Retry.BaseDelayMs = 0 }, true},
		{"zero interval", func(c *Config) { c.Competency.AssessmentIntervalMonths = 0 }, true},
		{"untimed allowed", func(c *Config) { c.Quiz.TimeLimitMinutes = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
