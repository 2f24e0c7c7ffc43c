package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
)

type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// FileLogger builds a JSON logrus logger writing to stdout and to a
// size-rotated file. The returned closer flushes and closes the file.
func FileLogger(level logrus.Level, opts FileOptions) (io.Closer, *logrus.Logger, error) {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultMaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = defaultMaxBackups
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	if opts.Path == "" {
		logger.SetOutput(os.Stdout)
		return nopCloser{}, logger, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator, logger, nil
}

// ConsoleLogger is a text logger for CLI output.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	logger.SetOutput(os.Stderr)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
