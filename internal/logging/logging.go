package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"docarchive/internal/config"
)

// New builds the application logger: JSON lines on stdout and, when configured,
// on a size-rotated log file as well.
func New(cfg config.LogConfig, loc *time.Location) *logrus.Logger {
	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	log := NewWithWriter(io.MultiWriter(writers...), loc)
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

// NewWithWriter returns an info-level JSON logger writing to w.
func NewWithWriter(w io.Writer, loc *time.Location) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(Formatter(loc))
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Formatter renders one JSON object per line with "ts", "level" and "msg" keys.
func Formatter(loc *time.Location) logrus.Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &zoneFormatter{
		loc: loc,
		inner: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		},
	}
}

type zoneFormatter struct {
	loc   *time.Location
	inner logrus.Formatter
}

func (f *zoneFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.inner.Format(e)
}

// Discard returns a logger that drops everything. Handy for tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
