package webapi

import (
	"net/http"

	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/labstack/echo/v4"
)

// CacheController exposes the metadata cache. Evicting is always safe: a
// path missing from the cache is looked up on the peer again.
type CacheController struct {
	cache *mfsdav.Cache
}

type cacheState struct {
	Entries int      `json:"entries"`
	Paths   []string `json:"paths,omitempty"`
}

func NewCacheController(cache *mfsdav.Cache) *CacheController {
	return &CacheController{cache: cache}
}

// ShowCacheHandler returns the number of cached paths, and the paths
// themselves when ?paths=true.
func (c *CacheController) ShowCacheHandler(ctx echo.Context) error {
	state := cacheState{Entries: c.cache.Len()}
	if ctx.QueryParam("paths") == "true" {
		state.Paths = c.cache.Keys()
	}

	return ctx.JSON(http.StatusOK, state)
}

func (c *CacheController) EvictHandler(ctx echo.Context) error {
	var req struct {
		Path string `json:"path"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	c.cache.RemoveTree(peer.NormalizePath(req.Path))
	return ctx.JSON(http.StatusOK, cacheState{Entries: c.cache.Len()})
}

func (c *CacheController) ResetHandler(ctx echo.Context) error {
	c.cache.Reset()
	return ctx.JSON(http.StatusOK, cacheState{Entries: 0})
}
