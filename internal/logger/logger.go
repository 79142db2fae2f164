package logger

import (
	"sync"
)

// Level names accepted by Get. Anything else falls back to debug.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	instance *Logger
	initOnce sync.Once
)

// Get returns the process-wide logger, building it on first use. The level
// argument only matters on that first call; later callers share the already
// configured instance.
func Get(level string) *Logger {
	initOnce.Do(func() {
		instance = newZapLogger(level)
	})
	return instance
}
