package logging

import (
	"fmt"
	"log"
)

// Log level names, in increasing severity.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var severity = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

var currentLevel = severity[LevelInfo]

// SetLevel sets the global logging level. Unknown names select info.
func SetLevel(level string) {
	s, ok := severity[level]
	if !ok {
		s = severity[LevelInfo]
	}
	currentLevel = s
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	if shouldLog(LevelDebug) {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	if shouldLog(LevelInfo) {
		fmt.Printf(format+"\n", args...)
	}
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	if shouldLog(LevelWarn) {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	if shouldLog(LevelError) {
		log.Printf("[ERROR] "+format, args...)
	}
}

func shouldLog(level string) bool {
	return severity[level] >= currentLevel
}
