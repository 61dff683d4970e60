// Package obs initializes the solver's logging, mirroring
// philipjkim-pls7-cli's dev/prod formatter split.
package obs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures and returns the standard logrus logger based
// on the development-mode flag. In dev mode, debug messages and a
// colorized, timestamped formatter are enabled; in production mode,
// only info level and above are shown with a plain formatter.
func InitLogger(isDevMode bool) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stdout)

	if isDevMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("logger initialized in debug mode")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	return logger
}
