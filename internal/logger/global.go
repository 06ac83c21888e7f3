// global.go
package logger

import (
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the global logger setup
type Config struct {
	Level LogLevel // minimum level, defaults to info
	JSON  bool     // JSON output instead of text
	File  FileOutput
}

// FileOutput enables rotating file output in addition to stderr
type FileOutput struct {
	Enabled    bool
	Path       string // log file path
	MaxSizeMB  int    // size per file before rotation
	MaxBackups int    // rotated files to keep
}

var (
	globalLogger Logger
	globalInit   sync.Once
	globalMu     sync.RWMutex
)

// InitGlobal initializes the global logger with the given configuration.
// Only the first call takes effect.
func InitGlobal(cfg Config) {
	globalInit.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		globalLogger = newFromConfig(cfg)
	})
}

// Global returns the global logger, initializing a default stderr text
// logger if InitGlobal has not been called.
func Global() Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	InitGlobal(Config{Level: LogLevelInfo})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func newFromConfig(cfg Config) Logger {
	level := cfg.Level
	if level == "" {
		level = LogLevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.File.Enabled && cfg.File.Path != "" {
		maxSize := cfg.File.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 5
		}
		maxBackups := cfg.File.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		w = io.MultiWriter(os.Stderr, rotator)
	}

	return NewSlogLogger(w, level, cfg.JSON)
}
