// Package logx writes leveled JSON-lines logs with secret redaction. The
// browser runs full-screen, so logs go to a file or are discarded.
package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelDebug]
	}
	return levelNames[l]
}

// ParseLevel accepts debug, info, warn (or warning) and error, case-insensitively.
// An empty string means info.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Messages and string fields longer than this are shortened unless verbose.
const messageLimit = 2 * 1024

const redacted = "[REDACTED]"

// sink is the process-wide logger state.
type sink struct {
	mu       sync.RWMutex
	writeMu  sync.Mutex
	min      Level
	w        io.Writer
	verbose  bool
	secrets  []string
	replacer *strings.Replacer
}

var std = &sink{min: LevelWarn, w: io.Discard, replacer: strings.NewReplacer()}

// SetOutput sets the destination for logs. nil discards.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	std.mu.Lock()
	std.w = w
	std.mu.Unlock()
}

// SetMinLevel sets the minimum level to emit.
func SetMinLevel(l Level) {
	std.mu.Lock()
	std.min = l
	std.mu.Unlock()
}

// SetVerbose disables truncation of long messages and fields.
func SetVerbose(v bool) {
	std.mu.Lock()
	std.verbose = v
	std.mu.Unlock()
}

func Verbose() bool {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.verbose
}

// RegisterSecret adds a string to be redacted in outputs.
func RegisterSecret(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	std.mu.Lock()
	defer std.mu.Unlock()
	std.secrets = append(std.secrets, s)
	pairs := make([]string, 0, 2*len(std.secrets))
	for _, sec := range std.secrets {
		pairs = append(pairs, sec, redacted)
	}
	std.replacer = strings.NewReplacer(pairs...)
}

// Options configures the process-wide logger.
type Options struct {
	File    string
	Level   string
	Verbose bool
	Secrets []string
}

// Setup applies opts. With an empty File logs are discarded. The returned
// closer releases the log file.
func Setup(opts Options) (io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	for _, s := range opts.Secrets {
		RegisterSecret(s)
	}
	SetMinLevel(lvl)
	SetVerbose(opts.Verbose)

	if opts.File == "" {
		SetOutput(nil)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetOutput(f)
	return f, nil
}

// StdlogWriter turns each line written to it into a JSON entry at level,
// for use with log.SetOutput.
func StdlogWriter(level Level, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	return lineWriter{level: level, w: w}
}

type lineWriter struct {
	level Level
	w     io.Writer
}

func (lw lineWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if err := std.emit(lw.w, lw.level, string(line), nil); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func logf(l Level, format string, args []any) {
	std.mu.RLock()
	w := std.w
	std.mu.RUnlock()
	_ = std.emit(w, l, fmt.Sprintf(format, args...), nil)
}

func Debugf(format string, args ...any) { logf(LevelDebug, format, args) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args) }
func Errorf(format string, args ...any) { logf(LevelError, format, args) }

// Event logs msg with structured fields. String fields are redacted.
func Event(lvl Level, msg string, fields map[string]any) {
	std.mu.RLock()
	w := std.w
	std.mu.RUnlock()
	_ = std.emit(w, lvl, msg, fields)
}

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// scrub redacts s and, unless verbose, shortens it.
func (s *sink) scrub(v string) string {
	s.mu.RLock()
	r, verbose := s.replacer, s.verbose
	s.mu.RUnlock()
	v = r.Replace(v)
	if !verbose {
		v = truncate(v, messageLimit)
	}
	return v
}

func (s *sink) emit(w io.Writer, lvl Level, msg string, fields map[string]any) error {
	s.mu.RLock()
	enabled := lvl >= s.min
	s.mu.RUnlock()
	if !enabled {
		return nil
	}

	e := entry{
		TS:    time.Now().Format(time.RFC3339Nano),
		Level: lvl.String(),
		Msg:   s.scrub(msg),
	}
	if len(fields) > 0 {
		e.Fields = make(map[string]any, len(fields))
		for k, v := range fields {
			if str, ok := v.(string); ok {
				v = s.scrub(str)
			}
			e.Fields[k] = v
		}
	}

	line, err := json.Marshal(e)
	if err != nil {
		line = []byte(e.Msg)
	}
	line = append(line, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = w.Write(line)
	return err
}

// truncate keeps the head and a short tail of s around a marker.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	const marker, tail = "… [truncated]", 10
	if limit <= len(marker)+tail {
		return s[:limit]
	}
	return s[:limit-len(marker)-tail] + marker + s[len(s)-tail:]
}
