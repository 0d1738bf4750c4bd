package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSetLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(log.Writer())

	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message logged at warn level")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message not logged at warn level")
	}
	if !strings.Contains(out, "error message") {
		t.Error("error message not logged at warn level")
	}
}

func TestIsDebugEnabled(t *testing.T) {
	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}

	SetLevel(LevelInfo)
	defer SetLevel(LevelInfo)
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at info level")
	}
}
