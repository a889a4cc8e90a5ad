package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// LogOptions describes where and how the process logs.
type LogOptions struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
}

// ConfigureLogging applies opts to logger. An unknown level falls back to info with a warning.
// The returned io.Closer releases the log file, if any.
func ConfigureLogging(logger *log.Logger, opts LogOptions) (io.Closer, error) {
	logger.SetFormatter(NewFormatter(opts.Format))

	var closer io.Closer = nopCloser{}
	out := io.Writer(os.Stdout)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), os.ModePerm); err != nil {
			return nil, err
		}
		lumberjackLogger := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
		}
		out = io.MultiWriter(os.Stdout, lumberjackLogger)
		closer = lumberjackLogger
	}
	logger.SetOutput(out)

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
		logger.WithFields(log.Fields{"level": opts.Level}).Warning("Couldn't parse the log level, defaulting to info")
	}
	logger.SetLevel(level)

	return closer, nil
}

// NewFormatter returns the logrus formatter for format: text, json or prefixed.
func NewFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &log.JSONFormatter{TimestampFormat: timestampFormat}
	case "prefixed":
		return &prefixed.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
			ForceFormatting: true,
		}
	default:
		return &log.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
