package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	prevLevel := SetLevel(LevelInfo)
	t.Cleanup(func() {
		SetOutput(prev)
		SetLevel(prevLevel)
	})
	return &buf
}

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return entry
}

func TestEmitFlattensErrorsAndDurations(t *testing.T) {
	buf := capture(t)

	Warn("draft.malformed", map[string]any{
		"key":     "resume_builder_data",
		"err":     errors.New("bad json"),
		"elapsed": 1500 * time.Millisecond,
	})

	entry := decode(t, buf.String())
	if entry["level"] != "warn" || entry["msg"] != "draft.malformed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["err"] != "bad json" {
		t.Fatalf("expected error string, got %v", entry["err"])
	}
	if entry["elapsed"] != "1.5s" {
		t.Fatalf("expected duration string, got %v", entry["elapsed"])
	}
	if entry["key"] != "resume_builder_data" {
		t.Fatalf("expected key field, got %v", entry["key"])
	}
}

func TestReservedKeysWinOverFields(t *testing.T) {
	buf := capture(t)

	Info("editor.saved", map[string]any{"msg": "spoofed", "level": "debug"})

	entry := decode(t, buf.String())
	if entry["msg"] != "editor.saved" || entry["level"] != "info" {
		t.Fatalf("reserved keys overwritten: %v", entry)
	}
}

func TestLevelThresholdDropsLowerLines(t *testing.T) {
	buf := capture(t)

	Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info, got %q", buf.String())
	}

	SetLevel(LevelError)
	Warn("hidden", nil)
	Error("shown", nil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || decode(t, lines[0])["msg"] != "shown" {
		t.Fatalf("expected only the error line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, " WARNING ": LevelWarn, "error": LevelError, "": LevelInfo, "loud": LevelInfo}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
