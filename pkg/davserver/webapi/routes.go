package webapi

import (
	"github.com/debox-network/ipfs-webdav/pkg/clog"
	"github.com/debox-network/ipfs-webdav/pkg/metrics"
	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouteDependencies struct {
	Cache     *mfsdav.Cache
	Loggers   *clog.ContextLogger
	LogOutput string
}

// NewServer returns the admin API: cache and logging control under /api and
// prometheus metrics under /metrics.
func NewServer(deps RouteDependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	g := e.Group("/api")

	cacheController := NewCacheController(deps.Cache)
	g.GET("/cache", cacheController.ShowCacheHandler)
	g.POST("/cache/evict", cacheController.EvictHandler)
	g.POST("/cache/reset", cacheController.ResetHandler)

	logController := NewLogController(deps.Loggers, deps.LogOutput)
	g.POST("/set-logging-level", logController.SetLogLevelHandler)
	g.POST("/set-logging-output", logController.SetLogOutputHandler)
	g.POST("/set-logging", logController.SetLoggingHandler)
	g.GET("/show-logging", logController.ShowCurrentLoggingHandler)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}
