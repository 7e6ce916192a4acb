package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is attached to a log entry as structured key/values.
type Fields = logrus.Fields

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Init switches to JSON output in production and applies the level name
// (debug, info, warn, error). Unknown levels keep the current one.
func Init(level string, jsonOutput bool) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	if jsonOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

// L exposes the underlying logger, e.g. for gin's writer.
func L() *logrus.Logger {
	return log
}

func Info(msg string, fields ...Fields) {
	entry(fields).Info(msg)
}

func Warn(msg string, fields ...Fields) {
	entry(fields).Warn(msg)
}

func Error(msg string, err error, fields ...Fields) {
	e := entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func entry(fields []Fields) *logrus.Entry {
	e := logrus.NewEntry(log)
	for _, f := range fields {
		if f != nil {
			e = e.WithFields(f)
		}
	}
	return e
}
