// Package clog gives each part of the server its own apex/log logger, so
// that the level and destination of, say, WebDAV request logs can be changed
// without touching the backend logs.
package clog

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/apex/log"
)

// GlobalLoggerCtx names the logger used by contexts that have no logger of
// their own.
const GlobalLoggerCtx = "global"

const (
	DAVCtx     = "dav"
	FSCtx      = "fs"
	BackendCtx = "backend"
	AdminCtx   = "admin"
)

type ContextLogger struct {
	GlobalLogger   *log.Logger
	ContextLoggers sync.Map
}

func NewContextLogger(w io.WriteCloser, level log.Level) *ContextLogger {
	return &ContextLogger{
		GlobalLogger: &log.Logger{
			Handler: NewHandler(w),
			Level:   level,
		},
	}
}

// AddLoggingContext gives ctx its own logger writing to w, starting at the
// global logger's level.
func (l *ContextLogger) AddLoggingContext(ctx string, w io.WriteCloser) {
	logger := &log.Logger{
		Handler: NewHandler(w),
		Level:   l.GlobalLogger.Level,
	}

	if old, loaded := l.ContextLoggers.Swap(ctx, logger); loaded {
		closeLogger(old)
	}
}

func (l *ContextLogger) RemoveLoggingContext(ctx string) {
	if logger, ok := l.ContextLoggers.LoadAndDelete(ctx); ok {
		closeLogger(logger)
	}
}

func (l *ContextLogger) SetLevel(ctx string, level log.Level) error {
	logger := l.logger(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	logger.Level = level
	return nil
}

func (l *ContextLogger) SetLevelFromString(ctx, s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	return l.SetLevel(ctx, level)
}

func (l *ContextLogger) Level(ctx string) (log.Level, error) {
	logger := l.logger(ctx)
	if logger == nil {
		return log.InvalidLevel, fmt.Errorf("no such logging context %s", ctx)
	}

	return logger.Level, nil
}

func (l *ContextLogger) SetOutput(ctx string, w io.WriteCloser) error {
	logger := l.logger(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	h, ok := logger.Handler.(*Handler)
	if !ok {
		return fmt.Errorf("logging context %s does not use a clog handler", ctx)
	}

	h.SetOutput(w)
	return nil
}

// Contexts lists the global context and every added context, sorted.
func (l *ContextLogger) Contexts() []string {
	contexts := []string{GlobalLoggerCtx}
	l.ContextLoggers.Range(func(key, _ interface{}) bool {
		contexts = append(contexts, key.(string))
		return true
	})

	sort.Strings(contexts)
	return contexts
}

// UsingCtx returns an entry tagged with ctx, written by the context's own
// logger if it has one and by the global logger otherwise.
func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	if logger, ok := l.ContextLoggers.Load(ctx); ok {
		return logger.(*log.Logger).WithField("ctx", ctx)
	}

	return l.GlobalLogger.WithField("ctx", ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.GlobalLogger.WithField("ctx", GlobalLoggerCtx)
}

func (l *ContextLogger) logger(ctx string) *log.Logger {
	if ctx == "" || ctx == GlobalLoggerCtx {
		return l.GlobalLogger
	}

	logger, ok := l.ContextLoggers.Load(ctx)
	if !ok {
		return nil
	}

	return logger.(*log.Logger)
}

func closeLogger(logger interface{}) {
	if h, ok := logger.(*log.Logger).Handler.(*Handler); ok {
		h.Close()
	}
}
