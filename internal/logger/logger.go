// Package logger holds the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// SetVerbose switches debug output on, used by the --verbose flag.
func SetVerbose(v bool) {
	if v {
		Log.SetLevel(logrus.DebugLevel)
	}
}

// Silence discards all output; tests use it to keep runs quiet.
func Silence() {
	Log.SetOutput(io.Discard)
}
