// Package logger sets up structured logging. The terminal belongs to the UI,
// so entries go to a file.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "LOG_LEVEL"

// Init returns a JSON logger writing to path, tagged with the service name.
// An empty path discards all output. The returned closer releases the file.
func Init(service, path, level string) (*logrus.Entry, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	var closer io.Closer = nopCloser{}
	if path == "" {
		log.SetOutput(io.Discard)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		log.SetOutput(f)
		closer = f
	}

	log.SetLevel(parseLevel(level))
	return log.WithField("service", service), closer, nil
}

func parseLevel(configured string) logrus.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		configured = env
	}
	lvl, err := logrus.ParseLevel(configured)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
