package peer

import (
	"context"
	"time"

	"github.com/debox-network/ipfs-webdav/pkg/metrics"
)

// Instrumented wraps a Store and records every call in pkg/metrics.
type Instrumented struct {
	Store
}

func NewInstrumented(s Store) *Instrumented {
	return &Instrumented{Store: s}
}

func (s *Instrumented) List(ctx context.Context, path string) (entries []Entry, err error) {
	defer observe(OpList, time.Now(), &err)
	return s.Store.List(ctx, path)
}

func (s *Instrumented) Stat(ctx context.Context, path string) (entry Entry, err error) {
	defer observe(OpStat, time.Now(), &err)
	return s.Store.Stat(ctx, path)
}

func (s *Instrumented) MakeDirectory(ctx context.Context, path string) (entry Entry, err error) {
	defer observe(OpMakeDirectory, time.Now(), &err)
	return s.Store.MakeDirectory(ctx, path)
}

func (s *Instrumented) Remove(ctx context.Context, path string) (err error) {
	defer observe(OpRemove, time.Now(), &err)
	return s.Store.Remove(ctx, path)
}

func (s *Instrumented) Move(ctx context.Context, path, dest string) (err error) {
	defer observe(OpMove, time.Now(), &err)
	return s.Store.Move(ctx, path, dest)
}

func (s *Instrumented) Copy(ctx context.Context, path, dest string) (err error) {
	defer observe(OpCopy, time.Now(), &err)
	return s.Store.Copy(ctx, path, dest)
}

func (s *Instrumented) Read(ctx context.Context, path string, offset, count int64) (data []byte, err error) {
	defer observe(OpRead, time.Now(), &err)
	return s.Store.Read(ctx, path, offset, count)
}

func (s *Instrumented) Write(ctx context.Context, path string, offset int64, truncate bool, data []byte) (err error) {
	defer observe(OpWrite, time.Now(), &err)
	return s.Store.Write(ctx, path, offset, truncate, data)
}

func (s *Instrumented) Flush(ctx context.Context, path string) (err error) {
	defer observe(OpFlush, time.Now(), &err)
	return s.Store.Flush(ctx, path)
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveBackendCall(op, start, *err)
}
