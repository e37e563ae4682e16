// Package logger provides a simple leveled logging interface.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger defines the logging interface used across the application.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

// Level represents logging levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type logger struct {
	level   Level
	loggers map[Level]*log.Logger
	mu      sync.RWMutex
}

// New creates a logger whose level is read from the LOG_LEVEL
// environment variable (default info).
func New() Logger {
	return &logger{
		level: parseLevel(os.Getenv("LOG_LEVEL")),
		loggers: map[Level]*log.Logger{
			LevelDebug: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
			LevelInfo:  log.New(os.Stdout, "[INFO] ", log.LstdFlags),
			LevelWarn:  log.New(os.Stdout, "[WARN] ", log.LstdFlags),
			LevelError: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		},
	}
}

func parseLevel(levelStr string) Level {
	switch strings.ToLower(levelStr) {
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

func (l *logger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *logger) output(level Level, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.mu.RLock()
	out := l.loggers[level]
	l.mu.RUnlock()
	out.Output(3, fmt.Sprint(v...))
}

func (l *logger) outputf(level Level, format string, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.mu.RLock()
	out := l.loggers[level]
	l.mu.RUnlock()
	out.Output(3, fmt.Sprintf(format, v...))
}

func (l *logger) Debug(v ...interface{})                 { l.output(LevelDebug, v...) }
func (l *logger) Debugf(format string, v ...interface{}) { l.outputf(LevelDebug, format, v...) }
func (l *logger) Info(v ...interface{})                  { l.output(LevelInfo, v...) }
func (l *logger) Infof(format string, v ...interface{})  { l.outputf(LevelInfo, format, v...) }
func (l *logger) Warn(v ...interface{})                  { l.output(LevelWarn, v...) }
func (l *logger) Warnf(format string, v ...interface{})  { l.outputf(LevelWarn, format, v...) }
func (l *logger) Error(v ...interface{})                 { l.output(LevelError, v...) }
func (l *logger) Errorf(format string, v ...interface{}) { l.outputf(LevelError, format, v...) }

func (l *logger) Fatal(v ...interface{}) {
	l.output(LevelError, v...)
	os.Exit(1)
}

func (l *logger) Fatalf(format string, v ...interface{}) {
	l.outputf(LevelError, format, v...)
	os.Exit(1)
}
