package clog

import (
	"io"
	"os"

	"github.com/apex/log"
)

var clogger = NewContextLogger(NopCloser(os.Stdout), log.InfoLevel)

// Default returns the process wide ContextLogger.
func Default() *ContextLogger {
	return clogger
}

// Install routes apex/log's package level functions (log.Infof and friends)
// through the global logger.
func Install() {
	log.Log = clogger.GlobalLogger
}

func AddLoggingContext(ctx string, w io.WriteCloser) {
	clogger.AddLoggingContext(ctx, w)
}

func SetGlobalLoggerLevelFromString(s string) error {
	return clogger.SetLevelFromString(GlobalLoggerCtx, s)
}

func SetGlobalOutput(w io.WriteCloser) error {
	return clogger.SetOutput(GlobalLoggerCtx, w)
}

func UsingCtx(ctx string) *log.Entry {
	return clogger.UsingCtx(ctx)
}

func Global() *log.Entry {
	return clogger.Global()
}
