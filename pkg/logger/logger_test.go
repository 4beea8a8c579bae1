package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		value       string
		development bool
		want        slog.Level
	}{
		{"debug", false, slog.LevelDebug},
		{" WARN ", false, slog.LevelWarn},
		{"warning", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"fatal", false, LevelCritical},
		{"", false, slog.LevelInfo},
		{"", true, slog.LevelDebug},
		{"loud", true, slog.LevelDebug},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.value, tc.development); got != tc.want {
			t.Fatalf("ParseLevel(%q, %v) = %v, want %v", tc.value, tc.development, got, tc.want)
		}
	}
}

func TestParseFormatDefaultsToJSON(t *testing.T) {
	if got := ParseFormat("TEXT"); got != FormatText {
		t.Fatalf("expected text, got %q", got)
	}
	if got := ParseFormat("yaml"); got != FormatJSON {
		t.Fatalf("expected json, got %q", got)
	}
}

func TestBusinessErrorWritesWarnWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: slog.LevelInfo, Output: &buf, Attrs: []any{"service", "permit-tracker"}})

	log.BusinessError("packages.get: forbidden", errors.New("not owner"), "package_id", "p-1")
	log.BusinessError("ignored", nil)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected one json record, got %q: %v", buf.String(), err)
	}
	if record["level"] != "WARN" || record["err"] != "not owner" || record["package_id"] != "p-1" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["service"] != "permit-tracker" {
		t.Fatalf("expected service attr, got %v", record["service"])
	}
}

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: slog.LevelError, Format: FormatText, Output: &buf})

	log.Info("dropped")
	log.Critical("app: command failed")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "level=CRITICAL") {
		t.Fatalf("expected CRITICAL level, got %q", out)
	}
}
