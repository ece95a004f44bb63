package logger

import (
	"os"
	"strings"
)

var globalLogger *Logger

func init() {
	globalLogger = NewDefault()
	configureFromEnv()
}

// Global returns the process-wide logger instance.
func Global() *Logger {
	return globalLogger
}

// Component derives a component logger from the global instance.
func Component(name string) *Logger {
	return globalLogger.WithComponent(name)
}

// configureFromEnv applies LOG_LEVEL and LOG_FORMAT from the
// environment to the global logger.
func configureFromEnv() {
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, ok := ParseLevel(levelStr); ok {
			globalLogger.SetLevel(level)
		}
	}
	if formatStr := os.Getenv("LOG_FORMAT"); formatStr != "" {
		if format, ok := ParseFormat(formatStr); ok {
			globalLogger.SetFormat(format)
		}
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(level string) (Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	default:
		return INFO, false
	}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(format string) (Format, bool) {
	switch strings.ToLower(format) {
	case "json":
		return JSONFormat, true
	case "text":
		return TextFormat, true
	default:
		return JSONFormat, false
	}
}
