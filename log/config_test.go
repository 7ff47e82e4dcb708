package log

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithLevel(tt.level)(config{})

			if result.level != tt.level {
				t.Errorf("expected level %v, got %v", tt.level, result.level)
			}

			if result.mutex == nil {
				t.Error("expected option to allocate a mutex")
			}
		})
	}
}

func TestConfig_BoolOptions(t *testing.T) {
	for _, enable := range []bool{true, false} {
		c := apply(config{}, WithCaller(enable), WithPretty(enable), WithColor(enable))

		if c.caller != enable || c.pretty != enable || c.color != enable {
			t.Errorf("expected all flags %v, got caller=%v pretty=%v color=%v",
				enable, c.caller, c.pretty, c.color)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" TEXT ", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}

		if got := ParseFormat(tt.want.String()); got != tt.want {
			t.Errorf("ParseFormat(%v.String()) = %v", tt.want, got)
		}
	}

	want := []string{"text", "json"}
	if got := slices.Collect(Formats()); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-09T14:05:06Z"},
		{"rfc-3339", "2024-03-09T14:05:06Z"},
		{"Kitchen", "2:05PM"},
		{"DateTime", "2024-03-09 14:05:06"},
		{"2006", "2024"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("format %q = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestConfig_WithFile_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wintitle.log")

	logger := Make(nil, WithFile(path, 0, 0), WithPretty(false))
	logger.Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if !strings.Contains(string(data), "to file") {
		t.Errorf("expected message in log file, got: %s", data)
	}

	if logger.color {
		t.Error("expected color disabled for file output")
	}
}

func TestConfig_Handler_PrettyColor(t *testing.T) {
	var plain, colored bytes.Buffer

	Make(&plain, WithColor(false)).Info("msg")
	Make(&colored, WithColor(true)).Info("msg")

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("expected no escape sequences, got %q", plain.String())
	}

	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("expected escape sequences, got %q", colored.String())
	}
}
