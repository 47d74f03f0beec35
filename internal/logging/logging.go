// Package logging wires the process-wide slog logger and its runtime level.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Setup 构造全局 logger 并设置为 slog 默认实例。format 为 json 时输出 JSON，其余输出文本。
func Setup(w io.Writer, levelName, format string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level.Set(ParseLevel(levelName))

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SetLevel 在运行时调整日志级别，配置文件热更新时调用。
func SetLevel(name string) {
	level.Set(ParseLevel(name))
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}

// ParseLevel maps debug/info/warn/error to slog levels; unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Discard returns a logger that drops everything, used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
