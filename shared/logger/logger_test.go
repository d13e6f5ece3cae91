package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		emit   func(l *Logger)
		check  func(t *testing.T, out *bytes.Buffer)
	}{
		{
			name:   "json keeps attributes of the poll loop",
			config: Config{Level: "debug", Format: "json"},
			emit: func(l *Logger) {
				l.Debug("poll finished", slog.Int("jobs", 3), slog.String("backend", "ibm_kyiv"))
			},
			check: func(t *testing.T, out *bytes.Buffer) {
				entries := decodeLines(t, out)
				require.Len(t, entries, 1)
				assert.Equal(t, "DEBUG", entries[0]["level"])
				assert.Equal(t, "poll finished", entries[0]["msg"])
				assert.Equal(t, float64(3), entries[0]["jobs"])
				assert.Equal(t, "ibm_kyiv", entries[0]["backend"])
			},
		},
		{
			name:   "warn level drops info and debug",
			config: Config{Level: "warn", Format: "json"},
			emit: func(l *Logger) {
				l.Debug("dropped")
				l.Info("dropped")
				l.Warn("upstream slow", slog.Duration("elapsed", 0))
				l.Error("upstream failed")
			},
			check: func(t *testing.T, out *bytes.Buffer) {
				entries := decodeLines(t, out)
				require.Len(t, entries, 2)
				assert.Equal(t, "WARN", entries[0]["level"])
				assert.Equal(t, "ERROR", entries[1]["level"])
			},
		},
		{
			name:   "unknown format falls back to json",
			config: Config{Level: "info", Format: "logfmt"},
			emit:   func(l *Logger) { l.Info("transition recorded") },
			check: func(t *testing.T, out *bytes.Buffer) {
				entries := decodeLines(t, out)
				require.Len(t, entries, 1)
				assert.Equal(t, "transition recorded", entries[0]["msg"])
			},
		},
		{
			name:   "console output is uncolored when redirected",
			config: Config{Level: "info", Format: "console"},
			emit:   func(l *Logger) { l.Info("worker started", slog.Int("concurrency", 4)) },
			check: func(t *testing.T, out *bytes.Buffer) {
				s := out.String()
				assert.Contains(t, s, "INF")
				assert.Contains(t, s, "worker started")
				assert.Contains(t, s, "concurrency=4")
				assert.NotContains(t, s, "\x1b[")
			},
		},
		{
			name:   "source location",
			config: Config{Level: "info", Format: "json", EnableSource: true},
			emit:   func(l *Logger) { l.Info("with source") },
			check: func(t *testing.T, out *bytes.Buffer) {
				entries := decodeLines(t, out)
				require.Len(t, entries, 1)
				source, ok := entries[0]["source"].(map[string]any)
				require.True(t, ok)
				assert.Contains(t, source["file"], "logger_test.go")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg := tt.config
			cfg.writer = out

			l, err := New(&cfg)
			require.NoError(t, err)
			tt.emit(l)
			tt.check(t, out)
			assert.NoError(t, l.Close())
		})
	}
}

func TestNew_Outputs(t *testing.T) {
	t.Run("file output is appended and never colored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "worker.log")

		for i := 0; i < 2; i++ {
			l, err := New(&Config{Level: "info", Format: "text", Output: path})
			require.NoError(t, err)
			l.Info("poll finished", slog.Int("run", i))
			require.NoError(t, l.Close())
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "run=0")
		assert.Contains(t, string(data), "run=1")
		assert.NotContains(t, string(data), "\x1b[")
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open log file")
	})

	for _, output := range []string{"stdout", "stderr", ""} {
		t.Run("standard stream "+output, func(t *testing.T) {
			l, err := New(&Config{Output: output})
			require.NoError(t, err)
			assert.NoError(t, l.Close())
		})
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	require.NotNil(t, l)
	l.Error("discarded")
	assert.NoError(t, l.Close())
}

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
	assert.NoError(t, l.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_Derived(t *testing.T) {
	out := &bytes.Buffer{}
	base, err := New(&Config{Level: "info", Format: "json", writer: out})
	require.NoError(t, err)

	base.With("component", "poller").Info("tick")
	base.WithAttrs(slog.String("job_id", "job-1")).Info("queued")
	base.WithGroup("event").Info("received", slog.String("id", "e1"))

	entries := decodeLines(t, out)
	require.Len(t, entries, 3)
	assert.Equal(t, "poller", entries[0]["component"])
	assert.Equal(t, "job-1", entries[1]["job_id"])
	assert.Equal(t, map[string]any{"id": "e1"}, entries[2]["event"])
}
