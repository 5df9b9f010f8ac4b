// Package telemetry writes one JSON object per line for services and tools alike.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level orders log severities.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu      sync.Mutex
	sink    io.Writer = os.Stdout
	minimum atomic.Int32
	now     = time.Now
)

func init() {
	minimum.Store(int32(ParseLevel(os.Getenv("LOG_LEVEL"))))
}

// SetOutput redirects log lines, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := sink
	sink = w
	return prev
}

// SetLevel drops lines below l and returns the previous threshold.
func SetLevel(l Level) Level {
	return Level(minimum.Swap(int32(l)))
}

func Debug(msg string, fields map[string]any) { emit(LevelDebug, msg, fields) }

func Info(msg string, fields map[string]any) { emit(LevelInfo, msg, fields) }

func Warn(msg string, fields map[string]any) { emit(LevelWarn, msg, fields) }

func Error(msg string, fields map[string]any) { emit(LevelError, msg, fields) }

func emit(level Level, msg string, fields map[string]any) {
	if level < Level(minimum.Load()) {
		return
	}
	ts := now().UTC().Format(time.RFC3339Nano)
	line := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		switch val := v.(type) {
		case error:
			v = val.Error()
		case fmt.Stringer:
			v = val.String()
		}
		line[k] = v
	}
	line["ts"] = ts
	line["level"] = level.String()
	line["msg"] = msg

	data, err := json.Marshal(line)
	if err != nil {
		data, _ = json.Marshal(map[string]any{"ts": ts, "level": "error", "msg": "telemetry.marshal_failed", "event": msg, "err": err.Error()})
	}
	data = append(data, '\n')

	mu.Lock()
	defer mu.Unlock()
	_, _ = sink.Write(data)
}
