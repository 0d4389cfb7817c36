package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// Fields are extra key/value pairs attached to a log line.
type Fields map[string]any

// Logger writes one JSON object per line.
// It is safe for concurrent use; writes are serialized by the underlying log.Logger.
type Logger struct {
	out *log.Logger
	loc *time.Location
}

// New returns a Logger writing to w with timestamps in loc.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{out: log.New(w, "", 0), loc: loc}
}

// Default returns a Logger writing to stdout in UTC.
func Default() *Logger {
	return New(os.Stdout, time.UTC)
}

func (l *Logger) Info(msg string, fields Fields)  { l.write("info", msg, fields) }
func (l *Logger) Warn(msg string, fields Fields)  { l.write("warn", msg, fields) }
func (l *Logger) Error(msg string, fields Fields) { l.write("error", msg, fields) }

func (l *Logger) write(level, msg string, fields Fields) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg

	if b, err := json.Marshal(entry); err == nil {
		l.out.Println(string(b))
	}
}
