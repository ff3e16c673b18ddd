package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestDefaultIsNoop(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("default logger is nil")
	}
	// Must not panic before Init.
	Info("discarded")
	Named("bake").Debug("discarded")
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warning", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"INFO", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(dir, tt.level+".log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: path, MaxSizeMB: 10}, false); err != nil {
				t.Fatalf("InitWithFileConfig() error = %v", err)
			}
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			content := readLog(t, path)
			for _, exp := range tt.expected {
				if !strings.Contains(content, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(content, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestNamedComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.log")
	if err := InitWithFileConfig("info", FileConfig{Path: path, MaxSizeMB: 10}, false); err != nil {
		t.Fatal(err)
	}
	Named("bake").Info("pass complete", zap.String("pass", "transmittance"))

	content := readLog(t, path)
	for _, want := range []string{"bake", "pass complete", "transmittance"} {
		if !strings.Contains(content, want) {
			t.Errorf("log output %q missing %q", content, want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/skybake.log")
	want := FileConfig{Path: "/tmp/skybake.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig() = %+v, want %+v", cfg, want)
	}
}

func TestKnownLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"DEBUG", true},
		{"warning", true},
		{"error", true},
		{"verbose", false},
	}
	for _, tt := range tests {
		if got := KnownLevel(tt.level); got != tt.want {
			t.Errorf("KnownLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
