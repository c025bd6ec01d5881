package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the dashboard logger output.
type Config struct {
	ServiceName string
	Level       string
	FilePath    string // empty writes to stderr
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
}

// Keys whose values never reach the log stream. The dashboard proxies a
// session-authenticated API, so request metadata can carry credentials.
var sensitiveKeys = map[string]struct{}{
	"email":         {},
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"cookie":        {},
	"password":      {},
}

// New builds a JSON slog logger. With a file path set, output rotates via
// lumberjack; otherwise it goes to stderr.
func New(cfg Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.FilePath != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    defaultInt(cfg.MaxSizeMB, 50),
			MaxBackups: defaultInt(cfg.MaxBackups, 5),
			MaxAge:     defaultInt(cfg.MaxAgeDays, 28),
			Compress:   cfg.Compress,
		}
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter builds the same logger over a caller-supplied writer.
func NewWithWriter(cfg Config, out io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: redactSensitive,
	})
	logger := slog.New(handler)
	if cfg.ServiceName != "" {
		logger = logger.With("service", cfg.ServiceName)
	}
	return logger
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redactSensitive(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
