package webapi

import (
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/debox-network/ipfs-webdav/pkg/clog"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LogController changes log levels and destinations at runtime. Every
// request may name a logging context; the global logger is used when it
// does not.
type LogController struct {
	mu      sync.Mutex
	loggers *clog.ContextLogger
	outputs map[string]string
}

type loggingState struct {
	Context string `json:"context"`
	Level   string `json:"log_level"`
	Output  string `json:"log_output"`
}

func NewLogController(loggers *clog.ContextLogger, globalOutput string) *LogController {
	if globalOutput == "" {
		globalOutput = "stdout"
	}

	return &LogController{
		loggers: loggers,
		outputs: map[string]string{clog.GlobalLoggerCtx: globalOutput},
	}
}

func (c *LogController) SetLoggingHandler(ctx echo.Context) error {
	var req struct {
		Context   string `json:"context"`
		LogLevel  string `json:"log_level"`
		LogOutput string `json:"log_output"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := contextName(req.Context)
	oldLevel, err := c.loggers.Level(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	if err := c.setLoggingLevel(name, req.LogLevel); err != nil {
		return err
	}

	if err := c.setLoggingOutput(name, req.LogOutput); err != nil {
		// Put the level back so a half applied request changes nothing.
		_ = c.loggers.SetLevel(name, oldLevel)
		return err
	}

	return ctx.JSON(http.StatusOK, c.state())
}

func (c *LogController) SetLogLevelHandler(ctx echo.Context) error {
	var req struct {
		Context  string `json:"context"`
		LogLevel string `json:"log_level"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setLoggingLevel(contextName(req.Context), req.LogLevel); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, c.state())
}

func (c *LogController) SetLogOutputHandler(ctx echo.Context) error {
	var req struct {
		Context   string `json:"context"`
		LogOutput string `json:"log_output"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setLoggingOutput(contextName(req.Context), req.LogOutput); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, c.state())
}

func (c *LogController) ShowCurrentLoggingHandler(ctx echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ctx.JSON(http.StatusOK, c.state())
}

func (c *LogController) setLoggingLevel(name, logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.Wrapf(err, "invalid log level %s", logLevel).Error())
	}

	if err := c.loggers.SetLevel(name, level); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	return nil
}

func (c *LogController) setLoggingOutput(name, logOutput string) error {
	w, err := clog.OpenOutput(logOutput)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.loggers.SetOutput(name, w); err != nil {
		_ = w.Close()
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	if logOutput == "" {
		logOutput = "stdout"
	}
	c.outputs[name] = logOutput

	return nil
}

func (c *LogController) state() []loggingState {
	var states []loggingState
	for _, name := range c.loggers.Contexts() {
		level, err := c.loggers.Level(name)
		if err != nil {
			continue
		}

		output, ok := c.outputs[name]
		if !ok {
			output = "unknown"
		}

		states = append(states, loggingState{Context: name, Level: level.String(), Output: output})
	}

	return states
}

func contextName(ctx string) string {
	if ctx == "" {
		return clog.GlobalLoggerCtx
	}

	return ctx
}
