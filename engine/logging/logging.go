// Package logging is the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-view",
			CallerOffset:    1,
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// Logger returns the shared logger.
func Logger() *log.Logger {
	return logger()
}

// SetLevel sets the minimum level from its name: debug, info, warn, error or fatal.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the name is not a level
func SetLevel(level string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	logger().SetLevel(l)
	return nil
}

// SetOutput redirects the logger, for tests.
func SetOutput(w io.Writer) {
	logger().SetOutput(w)
}

func Debug(msg string, keyvals ...any) {
	logger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	logger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	logger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	logger().Error(msg, keyvals...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(msg string, keyvals ...any) {
	logger().Fatal(msg, keyvals...)
}
