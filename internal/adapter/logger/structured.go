package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the process-wide structured logger. Log output goes to
// stderr so the progress display and report summary own stdout.
func Setup(verbose bool, filePath string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	if filePath == "" {
		logrus.SetOutput(os.Stderr)
		return
	}
	if file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
		logrus.SetOutput(io.MultiWriter(os.Stderr, file))
	} else {
		logrus.SetOutput(os.Stderr)
		logrus.WithError(err).Error("Could not create file for logging")
	}
}
