package mfsdav

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// These tests are meant to be run with -race.

func TestCache_ConcurrentReadersAndWriters(t *testing.T) {
	now := time.Now()
	c := NewCache()
	c.Insert("/m", NewDirectoryNode(now))
	c.Insert("/c", NewDirectoryNode(now))
	for i := 0; i < 10; i++ {
		c.Insert(fmt.Sprintf("/m/%d", i), NewFileNode(int64(i), now, now))
		c.Insert(fmt.Sprintf("/c/%d", i), NewFileNode(int64(i), now, now))
		c.Insert(fmt.Sprintf("/r/%d", i), NewFileNode(int64(i), now, now))
	}

	var g errgroup.Group

	for reader := 0; reader < 8; reader++ {
		g.Go(func() error {
			for n := 0; n < 200; n++ {
				path := fmt.Sprintf("/r/%d", n%10)
				node, err := c.Get(path)
				if err != nil {
					return err
				}
				if node.Size != int64(n%10) {
					return fmt.Errorf("%s has size %d", path, node.Size)
				}
				_ = c.Contains("/m/1")
				_ = c.Keys()
			}
			return nil
		})
	}

	for writer := 0; writer < 4; writer++ {
		writer := writer
		g.Go(func() error {
			for n := 0; n < 50; n++ {
				c.Insert(fmt.Sprintf("/w/%d/%d", writer, n), NewFileNode(1, now, now))
			}
			return nil
		})
	}

	g.Go(func() error {
		c.MoveValues("/m", "/moved")
		return nil
	})

	g.Go(func() error {
		c.CopyValues("/c", "/copied")
		return nil
	})

	require.NoError(t, g.Wait())

	var moved, copied, source, written int
	for _, key := range c.Keys() {
		switch {
		case key == "/m" || strings.HasPrefix(key, "/m/"):
			t.Fatalf("%s should have been moved", key)
		case key == "/moved" || strings.HasPrefix(key, "/moved/"):
			moved++
		case key == "/copied" || strings.HasPrefix(key, "/copied/"):
			copied++
		case key == "/c" || strings.HasPrefix(key, "/c/"):
			source++
		case strings.HasPrefix(key, "/w/"):
			written++
		}
	}

	require.Equal(t, 11, moved)
	require.Equal(t, 11, copied)
	require.Equal(t, 11, source, "a copy leaves the source in place")
	require.Equal(t, 4*50, written)
	require.Equal(t, 11*3+10+4*50, c.Len())
}

func TestFile_HandlesOnSeparateGoroutines(t *testing.T) {
	tc := newTestCase(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/f%d", i)
			f, err := tc.fs.Open(tc.ctx, path, OpenOptions{Write: true, Create: true})
			if err != nil {
				errs <- err
				return
			}
			if _, err := f.Write(tc.ctx, []byte(strings.Repeat("x", i))); err != nil {
				errs <- err
				return
			}
			errs <- f.Flush(tc.ctx)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	for i := 1; i <= 8; i++ {
		info, err := tc.fs.Metadata(tc.ctx, fmt.Sprintf("/f%d", i))
		require.NoError(t, err)
		require.Equal(t, int64(i), info.Size())
	}
}

func TestFile_ConcurrentHandlesOnOnePathLastFlushWins(t *testing.T) {
	tc := newTestCase(t)
	a := tc.create(t, "/shared", OpenOptions{})
	b := tc.create(t, "/shared", OpenOptions{})

	var g errgroup.Group
	g.Go(func() error {
		if _, err := a.Write(tc.ctx, []byte("aaaa")); err != nil {
			return err
		}
		return a.Flush(tc.ctx)
	})
	g.Go(func() error {
		if _, err := b.Write(tc.ctx, []byte("bb")); err != nil {
			return err
		}
		return b.Flush(tc.ctx)
	})
	require.NoError(t, g.Wait())

	data, ok := tc.store.Contents("/shared")
	require.True(t, ok)
	require.Contains(t, []string{"aaaa", "bbaa"}, string(data))

	info, err := tc.fs.Metadata(tc.ctx, "/shared")
	require.NoError(t, err)
	require.Contains(t, []int64{2, 4}, info.Size(), "the cache holds whichever handle flushed last")
}
