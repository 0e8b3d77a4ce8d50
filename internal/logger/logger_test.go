package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "urdfkit.log")
	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   false,
	}

	log := NewWithFileConfig("warn", cfg, false)
	log.Info("dropped below level")
	log.Warn("non-positive diagonal", zap.String("part", "L_arm"), zap.Int("axis", 2))
	Sync(log)

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped below level") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(out, "non-positive diagonal") || !strings.Contains(out, "L_arm") {
		t.Errorf("warn entry missing from log file: %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("expected WARN level marker, got %q", out)
	}
}

func TestNoOutputIsNop(t *testing.T) {
	log := NewWithFileConfig("debug", FileConfig{}, false)
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger with no outputs should be disabled")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("x.log")
	if cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("DefaultFileConfig() = %+v", cfg)
	}
}
