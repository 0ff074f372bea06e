package mfsdav

import (
	"sort"
	"sync"

	"github.com/debox-network/ipfs-webdav/pkg/metrics"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/pkg/errors"
)

// Cache holds the last known metadata for paths in the namespace. A missing
// key means the path is unknown, not that it does not exist. Keys are
// normalized paths. Nodes are copied on the way in and out.
type Cache struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

func NewCache() *Cache {
	return &Cache{nodes: make(map[string]Node)}
}

func (c *Cache) Contains(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.nodes[peer.NormalizePath(path)]
	return ok
}

func (c *Cache) Get(path string) (Node, error) {
	path = peer.NormalizePath(path)

	c.mu.RLock()
	n, ok := c.nodes[path]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheMiss()
		return Node{}, errors.Wrapf(ErrNotFound, "%s not in cache", path)
	}

	metrics.CacheHit()
	return n.Clone(), nil
}

func (c *Cache) Insert(path string, n Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[peer.NormalizePath(path)] = n.Clone()
	metrics.SetCacheEntries(len(c.nodes))
}

func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, peer.NormalizePath(path))
	metrics.SetCacheEntries(len(c.nodes))
}

// RemoveTree drops path and every cached path below it.
func (c *Cache) RemoveTree(path string) {
	path = peer.NormalizePath(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.nodes {
		if peer.IsUnder(key, path) {
			delete(c.nodes, key)
		}
	}
	metrics.SetCacheEntries(len(c.nodes))
}

// MoveValues rekeys from and everything below it to live under to. Only whole
// path segments match, so moving /a leaves /ab alone.
func (c *Cache) MoveValues(from, to string) {
	from = peer.NormalizePath(from)
	to = peer.NormalizePath(to)
	if from == to {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	moved := make(map[string]Node)
	for key, n := range c.nodes {
		if peer.IsUnder(key, from) {
			moved[peer.Rebase(key, from, to)] = n
			delete(c.nodes, key)
		}
	}

	for key, n := range moved {
		c.nodes[key] = n
	}
	metrics.SetCacheEntries(len(c.nodes))
}

// CopyValues duplicates from and everything below it under to. Copies share
// nothing with the originals.
func (c *Cache) CopyValues(from, to string) {
	from = peer.NormalizePath(from)
	to = peer.NormalizePath(to)
	if from == to {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make(map[string]Node)
	for key, n := range c.nodes {
		if peer.IsUnder(key, from) {
			copied[peer.Rebase(key, from, to)] = n.Clone()
		}
	}

	for key, n := range copied {
		c.nodes[key] = n
	}
	metrics.SetCacheEntries(len(c.nodes))
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Keys returns the cached paths in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.nodes))
	for key := range c.nodes {
		keys = append(keys, key)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = make(map[string]Node)
	metrics.SetCacheEntries(0)
}
