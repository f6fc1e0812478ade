package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: want=%v got=%v", in, want, got)
		}
	}
}

func TestNew_JSONWithLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, Config{Level: "warn", Format: "json"})
	l.Info("hidden")
	l.Warn("shown", slog.Int("row", 3))

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at warn level: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if rec["msg"] != "shown" || rec["row"] != float64(3) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestRunIDContext(t *testing.T) {
	t.Parallel()

	ctx := WithRunID(context.Background(), "run-1")
	if got := RunID(ctx); got != "run-1" {
		t.Fatalf("run id: %q", got)
	}
	if got := RunID(context.Background()); got != "" {
		t.Fatalf("empty context: %q", got)
	}
}

func TestInit_FileOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "app.log")
	if err := Init(cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = Init(DefaultConfig()) })

	Info(WithRunID(context.Background(), "r"), "hello")
	if Get() == nil {
		t.Fatalf("global logger not set")
	}
}
