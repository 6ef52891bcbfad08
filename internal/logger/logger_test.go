package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"debug", true},
		{"INFO", true},
		{"warn", true},
		{"error", true},
		{"trace", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := level(tt.in)
			if ok != tt.ok {
				t.Errorf("level(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Options{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Warn("shown", "contacts", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "contacts=3") {
		t.Errorf("warn message missing from %q", out)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Options{Level: "debug", Format: "json"}, &buf)

	log.Debug("loaded", "contacts", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "loaded" {
		t.Errorf("msg = %v, want loaded", rec["msg"])
	}
}

func TestNewLoggerFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		warning string
	}{
		{"bad level", Options{Level: "loud"}, "could not parse logger level"},
		{"bad format", Options{Format: "xml"}, "could not parse logger format"},
		{"bad file", Options{File: filepath.Join(os.DevNull, "nope", "x.log")}, "could not open logger file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(tt.options, &buf)
			if log == nil {
				t.Fatal("nil logger")
			}
			if !strings.Contains(buf.String(), tt.warning) {
				t.Errorf("output %q should contain %q", buf.String(), tt.warning)
			}
		})
	}
}

func TestNewLoggerFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "zbook.log")
	log := newLogger(Options{File: p}, &bytes.Buffer{})

	log.Info("to file")

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q, want message", data)
	}
}

func TestNewDevNullDiscards(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Options{File: os.DevNull}, &buf)
	log.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("devnull logger wrote %q", buf.String())
	}
}

func TestFormat(t *testing.T) {
	for _, in := range []string{"", "text", "JSON"} {
		if _, ok := format(in); !ok {
			t.Errorf("format(%q) should be accepted", in)
		}
	}
	if _, ok := format("xml"); ok {
		t.Error("format(xml) should be rejected")
	}
}

func TestNewLoggerBadFormatKeepsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "zbook.log")
	var stderr bytes.Buffer
	log := newLogger(Options{File: p, Format: "xml", Level: "loud"}, &stderr)

	log.Info("after fallback")

	if stderr.Len() != 0 {
		t.Errorf("file logger wrote to stderr: %q", stderr.String())
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"could not parse logger format", "could not parse logger level", "after fallback"} {
		if strings.Count(out, want) != 1 {
			t.Errorf("log file should contain %q once:\n%s", want, out)
		}
	}
}
