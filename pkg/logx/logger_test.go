package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Format = format
	cfg.Level = level
	cfg.EnableColors = false
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := newTestLogger(FormatConsole, LevelWarn)

	l.WithField("job_id", "a").Info("hidden")
	l.WithField("job_id", "b").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "job_id=b") {
		t.Fatalf("expected warn line with field, got %q", out)
	}
}

func TestLogger_JSONIncludesFieldsAndError(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelDebug)

	l.WithFields(Fields{"target_kind": "collection"}).WithError(errors.New("boom")).Error("job failed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json: %v (%q)", err, buf.String())
	}
	if line["message"] != "job failed" || line["level"] != "ERROR" {
		t.Fatalf("unexpected line: %v", line)
	}
	if line["target_kind"] != "collection" || line["error"] != "boom" {
		t.Fatalf("missing fields: %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
