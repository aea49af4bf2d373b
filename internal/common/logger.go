package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "warn"
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// ParseLogLevel maps a config string onto a LogLevel. Empty means warn.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning", "":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelWarn, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", s)
	}
}

// Logger wraps slog with the level it was built for.
// Output goes to stderr: stdout carries only the one result line.
type Logger struct {
	*slog.Logger
	level LogLevel
}

// logOutput is where every constructor writes; tests swap it.
var logOutput io.Writer = os.Stderr

func handlerOptions(level LogLevel) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       level.ToSlogLevel(),
		ReplaceAttr: maskAttr,
	}
}

// maskAttr redacts sensitive attributes through the global masker.
func maskAttr(_ []string, a slog.Attr) slog.Attr {
	if !globalMasker.IsEnabled() {
		return a
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if masked, ok := globalMasker.MaskValue(a.Key, a.Value.String()).(string); ok {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, globalMasker.MaskString(err.Error()))
		}
	}
	return a
}

// NewLogger creates a text logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(logOutput, handlerOptions(level))),
		level:  level,
	}
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(logOutput, handlerOptions(level))),
		level:  level,
	}
}

// NewColorLogger creates a logger using the colorized handler.
func NewColorLogger(level LogLevel) *Logger {
	h := NewColorHandler(logOutput, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	h.SetMasker(globalMasker)
	return &Logger{
		Logger: slog.New(h),
		level:  level,
	}
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		level:  l.level,
	}
}

// WithRequest returns a logger with HTTP request context. The url is masked.
func (l *Logger) WithRequest(method, url string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method, "url", MaskSensitiveData(url)),
		level:  l.level,
	}
}

// WithOutput returns a logger carrying the destination file path.
func (l *Logger) WithOutput(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("output", path),
		level:  l.level,
	}
}

// WithStore returns a logger with store context
func (l *Logger) WithStore(storeType string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", storeType),
		level:  l.level,
	}
}

var defaultLogger = NewLogger(LogLevelWarn)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	defaultLogger.Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
