package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/zarlcorp/zbook/internal/config"
)

var errExitCalled = errors.New("exit called")

func newParser(t *testing.T, cli *CLI, buf *bytes.Buffer) *kong.Kong {
	t.Helper()
	p, err := kong.New(cli,
		kong.Name("zbook"),
		kong.Vars{"version": "test"},
		kong.Writers(buf, buf),
		kong.Exit(func(int) { panic(errExitCalled) }),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	return p
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd string
	}{
		{"no args runs shell", nil, "shell"},
		{"shell", []string{"shell"}, "shell"},
		{"list", []string{"list", "--json"}, "list"},
		{"birthdays", []string{"birthdays", "--days", "3"}, "birthdays"},
		{"forget", []string{"forget", "Alice"}, "forget <name>"},
		{"browse", []string{"browse"}, "browse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			var buf bytes.Buffer
			ctx, err := newParser(t, &cli, &buf).Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v): %v", tt.args, err)
			}
			if ctx.Command() != tt.wantCmd {
				t.Errorf("command = %q, want %q", ctx.Command(), tt.wantCmd)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	var cli CLI
	var buf bytes.Buffer
	dir := t.TempDir()

	args := []string{"--data-dir", dir, "--config", filepath.Join(dir, "c.yaml"), "birthdays", "--days", "14", "--json"}
	if _, err := newParser(t, &cli, &buf).Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cli.DataDir != dir {
		t.Errorf("data dir = %q, want %q", cli.DataDir, dir)
	}
	if cli.Config != filepath.Join(dir, "c.yaml") {
		t.Errorf("config = %q", cli.Config)
	}
	if cli.Birthdays.Days != 14 || !cli.Birthdays.JSON {
		t.Errorf("birthdays = %+v", cli.Birthdays)
	}
}

func TestParseForgetRequiresName(t *testing.T) {
	var cli CLI
	var buf bytes.Buffer
	if _, err := newParser(t, &cli, &buf).Parse([]string{"forget"}); err == nil {
		t.Fatal("forget without a name should fail")
	}
}

func TestVersionFlag(t *testing.T) {
	var cli CLI
	var buf bytes.Buffer
	p := newParser(t, &cli, &buf)

	defer func() {
		if r := recover(); r != errExitCalled {
			t.Fatalf("recover = %v, want exit", r)
		}
		if !strings.Contains(buf.String(), "test") {
			t.Errorf("version output = %q", buf.String())
		}
	}()
	p.Parse([]string{"--version"})
}

func TestBirthdaysWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Birthdays.Window = 10

	tests := []struct {
		days int
		want int
	}{
		{-1, 10},
		{0, 0},
		{30, 30},
	}

	for _, tt := range tests {
		c := BirthdaysCmd{Days: tt.days}
		if got := c.window(&cfg); got != tt.want {
			t.Errorf("window(days=%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestResolveDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	cfg := config.DefaultConfig()

	if got := resolveDataDir("/flag", &cfg); got != "/flag" {
		t.Errorf("flag: got %q", got)
	}
	if got := resolveDataDir("", &cfg); got != "/xdg/zbook" {
		t.Errorf("default: got %q, want /xdg/zbook", got)
	}

	cfg.DataDir = "/from/config"
	if got := resolveDataDir("", &cfg); got != "/from/config" {
		t.Errorf("config: got %q", got)
	}
}

func TestLoadConfigExtraLayer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("ZBOOK_BIRTHDAY_WINDOW", "")

	p := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(p, []byte("birthdays:\n  window: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(p)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Birthdays.Window != 5 {
		t.Errorf("window = %d, want 5", cfg.Birthdays.Window)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ZBOOK_BIRTHDAY_WINDOW", "")
	t.Chdir(t.TempDir())

	p := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(p, []byte("birthdays:\n  window: -2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(p); err == nil {
		t.Fatal("negative window should fail validation")
	}
}
