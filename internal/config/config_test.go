package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Birthdays.Window != 7 {
		t.Errorf("default window = %d, want 7", cfg.Birthdays.Window)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.DataDir != "" {
		t.Errorf("default data dir = %q, want empty", cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	p := writeConfig(t, "config.yaml", `
data_dir: /tmp/zbook
birthdays:
  window: 14
log:
  level: debug
  format: json
  file: /tmp/zbook.log
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/tmp/zbook" {
		t.Errorf("data dir = %q, want /tmp/zbook", cfg.DataDir)
	}
	if cfg.Birthdays.Window != 14 {
		t.Errorf("window = %d, want 14", cfg.Birthdays.Window)
	}
	if cfg.Log != (Log{Level: "debug", Format: "json", File: "/tmp/zbook.log"}) {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/zbook.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("Load(missing) = %+v, want defaults", *cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeConfig(t, "config.yaml", "{{invalid yaml")

	if _, err := Load(p); err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	p := writeConfig(t, "config.yaml", "birthdays:\n  windw: 3\n")

	_, err := Load(p)
	if err == nil {
		t.Fatal("Load(unknown field) should return error")
	}
	if !strings.Contains(err.Error(), "windw") {
		t.Errorf("error %q should name the unknown field", err)
	}
}

func TestLoad_CommentOnly(t *testing.T) {
	p := writeConfig(t, "config.yaml", "# nothing here\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("Load(comment only) = %+v, want defaults", *cfg)
	}
}

func TestLoadLayered_LaterWins(t *testing.T) {
	user := writeConfig(t, "user.yaml", `
data_dir: /home/u/zbook
birthdays:
  window: 10
log:
  format: json
`)
	project := writeConfig(t, "project.yaml", `
birthdays:
  window: 3
`)

	cfg, err := LoadLayered(user, "/nonexistent/skip.yaml", project)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Birthdays.Window != 3 {
		t.Errorf("window = %d, want 3", cfg.Birthdays.Window)
	}
	if cfg.DataDir != "/home/u/zbook" {
		t.Errorf("data dir = %q, want value from first layer", cfg.DataDir)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q, want json", cfg.Log.Format)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want default warn", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative window", func(c *Config) { c.Birthdays.Window = -1 }, "birthdays.window"},
		{"zero window", func(c *Config) { c.Birthdays.Window = 0 }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ZBOOK_DATA_DIR", "/env/zbook")
	t.Setenv("ZBOOK_BIRTHDAY_WINDOW", "21")
	t.Setenv("ZBOOK_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.DataDir != "/env/zbook" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.Birthdays.Window != 21 {
		t.Errorf("window = %d, want 21", cfg.Birthdays.Window)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestApplyEnv_InvalidWindow(t *testing.T) {
	t.Setenv("ZBOOK_BIRTHDAY_WINDOW", "a week")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatal("ApplyEnv() should reject a non-numeric window")
	}
}
