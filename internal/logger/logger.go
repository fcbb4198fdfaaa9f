// Package logger is a thin leveled wrapper around go-logging shared by the
// whole service.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	module     = "tracker"
	timeFormat = "2006/01/02 15:04:05"
)

var log = logging.MustGetLogger(module)

func init() {
	setBackend(os.Stderr, logging.INFO)
}

// InitLogger sets the minimum level written to stderr. Unknown level names
// fall back to INFO.
func InitLogger(level string) {
	setBackend(os.Stderr, ParseLevel(level))
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer, level logging.Level) {
	setBackend(w, level)
}

// ParseLevel maps a level name such as "debug" or "WARNING" to a level.
func ParseLevel(name string) logging.Level {
	lvl, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return logging.INFO
	}
	return lvl
}

func setBackend(w io.Writer, level logging.Level) {
	backend := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:`+timeFormat+`} %{level:.4s} %{shortfile} - %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, module)
	log.SetBackend(leveled)
	// Wrapper functions add one frame; keep %{shortfile} pointing at the caller.
	log.ExtraCalldepth = 1
}

func Debug(args ...any) { log.Debug(args...) }

func Debugf(format string, args ...any) { log.Debugf(format, args...) }

func Info(args ...any) { log.Info(args...) }

func Infof(format string, args ...any) { log.Infof(format, args...) }

func Warning(args ...any) { log.Warning(args...) }

func Warningf(format string, args ...any) { log.Warningf(format, args...) }

func Error(args ...any) { log.Error(args...) }

func Errorf(format string, args ...any) { log.Errorf(format, args...) }
