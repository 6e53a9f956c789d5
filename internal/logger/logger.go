// Package logger configures the process-wide logrus logger
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and destination of log output
type Options struct {
	Level      string // logrus level name; unknown names mean info
	Format     string // text or json
	Output     string // stdout, file or both
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Init applies opts to the standard logrus logger
func Init(opts Options) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if opts.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}

	logrus.SetOutput(writer(opts))
}

func writer(opts Options) io.Writer {
	if opts.Filename == "" {
		return os.Stdout
	}
	switch opts.Output {
	case "file":
		return fileWriter(opts)
	case "both":
		return io.MultiWriter(os.Stdout, fileWriter(opts))
	default:
		return os.Stdout
	}
}

// fileWriter returns a file writer with rotation
func fileWriter(opts Options) io.Writer {
	return &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSizeMB,
		MaxAge:     opts.MaxAgeDays,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
}
