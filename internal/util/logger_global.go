package util

import (
	"fmt"
	"sync"
)

var (
	globalLogger *Logger
	loggerMu     sync.RWMutex
)

// InitLogger installs the global logger. Calling it again replaces the
// previous logger and closes it.
func InitLogger(logLevel, logFile string, debugToConsole bool) error {
	logger, err := NewLogger(logLevel, logFile, debugToConsole)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger installs logger as the global logger. A nil logger disables logging.
func SetLogger(logger *Logger) {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil && previous != logger {
		previous.Close()
	}
}

// GetLogger returns the global logger, which may be nil.
func GetLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

func logAt(level LogLevel, msg string, fields ...Field) {
	if logger := GetLogger(); logger != nil {
		logger.log(level, msg, fields...)
	}
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	logAt(LevelInfo, msg, fields...)
}

func LogInfof(format string, args ...interface{}) {
	logAt(LevelInfo, fmt.Sprintf(format, args...))
}

func LogDebug(msg string, fields ...Field) {
	logAt(LevelDebug, msg, fields...)
}

func LogDebugf(format string, args ...interface{}) {
	logAt(LevelDebug, fmt.Sprintf(format, args...))
}

func LogWarn(msg string, fields ...Field) {
	logAt(LevelWarn, msg, fields...)
}

func LogWarnf(format string, args ...interface{}) {
	logAt(LevelWarn, fmt.Sprintf(format, args...))
}

func LogError(msg string, fields ...Field) {
	logAt(LevelError, msg, fields...)
}

func LogErrorf(format string, args ...interface{}) {
	logAt(LevelError, fmt.Sprintf(format, args...))
}
