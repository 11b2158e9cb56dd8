package core

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var shouldPrintTraceLogs = false
var logLevel log.Level

// InitializeLogger sets up the text handler and applies the log level
// from configuration. Call it at process startup, and again after
// LoadConfig so the configured level takes effect.
func InitializeLogger() {
	log.SetHandler(text.New(os.Stderr))

	logLevelString := GetConfigStringDefault("core.log_level", "INFO")

	var err error
	logLevel, err = log.ParseLevel(logLevelString)
	if err == nil {
		log.SetLevel(logLevel)
	} else if logLevelString == "TRACE" {
		// apex/log has no TRACE level; emulate it as DEBUG, gated separately.
		log.SetLevel(log.DebugLevel)
		shouldPrintTraceLogs = true
	} else {
		logLevel = log.InfoLevel
		log.SetLevel(logLevel)
	}
}

// LogFatal logs a message at the FATAL level and exits. cmd/svsdemo uses
// it for startup failures it cannot continue past.
func LogFatal(module interface{}, message string) {
	log.Fatal(fmt.Sprintf("[%v] ", module) + ": " + message)
}

// LogError logs a message at the ERROR level. TransportErrors are
// logged here; Logic continues and the next timer tick re-attempts.
func LogError(module interface{}, message string) {
	if logLevel <= log.ErrorLevel {
		log.Error(fmt.Sprintf("[%v] ", module) + ": " + message)
	}
}

// LogWarn logs a message at the WARN level.
func LogWarn(module interface{}, message string) {
	if logLevel <= log.WarnLevel {
		log.Warn(fmt.Sprintf("[%v] ", module) + ": " + message)
	}
}

// LogInfo logs a message at the INFO level.
func LogInfo(module interface{}, message string) {
	if logLevel <= log.InfoLevel {
		log.Info(fmt.Sprintf("[%v] ", module) + ": " + message)
	}
}

// LogDebug logs a message at the DEBUG level, used for per-packet sync
// tracing.
func LogDebug(module interface{}, message string) {
	if logLevel <= log.DebugLevel {
		log.Debug(fmt.Sprintf("[%v] ", module) + ": " + message)
	}
}

// LogTrace logs a DEBUG-level message, but only when the configured log
// level was literally "TRACE".
func LogTrace(module interface{}, message string) {
	if shouldPrintTraceLogs {
		log.Debug(fmt.Sprintf("[%v] ", module) + ": " + message)
	}
}
