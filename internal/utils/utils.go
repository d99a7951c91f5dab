package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidID is returned when a supplier identifier cannot be parsed.
var ErrInvalidID = errors.New("Please enter a valid Supplier ID.")

var Log = logrus.New()

// SetLogLevel configures the shared logger. Trace and panic levels are not used.
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Log.SetLevel(logrus.FatalLevel)
	default:
		return fmt.Errorf("bad log level %q", level)
	}
	return nil
}

// ParseID parses a positive supplier identifier typed by the user.
func ParseID(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrInvalidID
	}
	id, err := strconv.Atoi(text)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
