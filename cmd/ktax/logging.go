package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logLevels = map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}

	engineLog = logrus.WithField("module", "engine")
	batchLog  = logrus.WithField("module", "batch")
)

// setupLogging routes log output to w (stderr in practice) at the named level
func setupLogging(w io.Writer, level string) error {
	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error; got %q", level)
	}
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	logrus.SetLevel(lvl)
	return nil
}
