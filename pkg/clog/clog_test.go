package clog

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/require"
)

func TestHandler_FormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(NopCloser(&buf))
	h.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"path": "/a", "op": "rm"}).Warn("backend call failed")

	require.Equal(t, " WARN 2024-05-01 12:00:00 backend call failed       op=rm path=/a\n", buf.String())
}

func TestContextLogger_LevelsAndOutputs(t *testing.T) {
	var global, dav bytes.Buffer
	l := NewContextLogger(NopCloser(&global), log.InfoLevel)
	l.AddLoggingContext(DAVCtx, NopCloser(&dav))

	require.Equal(t, []string{DAVCtx, GlobalLoggerCtx}, l.Contexts())

	l.UsingCtx(FSCtx).Info("to global")
	l.UsingCtx(DAVCtx).Debug("dropped")
	require.Contains(t, global.String(), "ctx=fs")
	require.Empty(t, dav.String())

	require.NoError(t, l.SetLevelFromString(DAVCtx, "debug"))
	l.UsingCtx(DAVCtx).Debug("kept")
	require.Contains(t, dav.String(), "kept")

	level, err := l.Level(DAVCtx)
	require.NoError(t, err)
	require.Equal(t, log.DebugLevel, level)

	require.Error(t, l.SetLevel("nope", log.InfoLevel))
	require.Error(t, l.SetLevelFromString(GlobalLoggerCtx, "loud"))

	var moved bytes.Buffer
	require.NoError(t, l.SetOutput(GlobalLoggerCtx, NopCloser(&moved)))
	l.Global().Info("after move")
	require.Contains(t, moved.String(), "after move")
	require.NotContains(t, global.String(), "after move")

	l.RemoveLoggingContext(DAVCtx)
	require.Equal(t, []string{GlobalLoggerCtx}, l.Contexts())
}
