// Package logging configures the process-wide logger: rotated file output
// under the config directory, with a stderr echo in debug mode so the TUI
// stays quiet by default.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mharris/quotly/internal/constants"
)

var logger *log.Logger

// Config holds logger configuration.
type Config struct {
	Debug     bool
	ConfigDir string
}

// Setup initializes the package logger. Safe to call once at startup;
// before Setup the package-level helpers are no-ops.
func Setup(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	writer := io.Writer(fileWriter)
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

func Debug(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Info(msg, keyvals...)
	}
}

// Infof exists for callers that hand a printf-style hook to collaborators,
// like the migration runner.
func Infof(format string, args ...any) {
	if logger != nil {
		logger.Infof(format, args...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Error(msg, keyvals...)
	}
}
