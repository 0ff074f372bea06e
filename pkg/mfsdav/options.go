package mfsdav

import (
	"os"
	"time"

	"github.com/apex/log"
)

// OpenOptions says how a file is opened. The zero value opens an existing
// file read-only.
type OpenOptions struct {
	Read      bool
	Write     bool
	Create    bool
	CreateNew bool
	Append    bool
	Truncate  bool
}

// OpenOptionsFromFlags converts os.OpenFile style flags.
func OpenOptionsFromFlags(flag int) OpenOptions {
	opts := OpenOptions{
		Create:   flag&os.O_CREATE != 0,
		Append:   flag&os.O_APPEND != 0,
		Truncate: flag&os.O_TRUNC != 0,
	}

	opts.CreateNew = opts.Create && flag&os.O_EXCL != 0

	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		opts.Write = true
	case os.O_RDWR:
		opts.Read, opts.Write = true, true
	default:
		opts.Read = true
	}

	return opts
}

// Modifies reports whether the options can change a file, as opposed to
// only reading it.
func (o OpenOptions) Modifies() bool {
	return o.Write || o.Create || o.CreateNew || o.Append || o.Truncate
}

type Option func(fs *FS)

// WithCache shares an existing cache instead of starting with an empty one.
func WithCache(cache *Cache) Option {
	return func(fs *FS) {
		fs.cache = cache
	}
}

func WithLogger(logger log.Interface) Option {
	return func(fs *FS) {
		fs.log = logger
	}
}

// WithStrictErrors makes mutating operations return backend failures instead
// of logging them and reporting success.
func WithStrictErrors(strict bool) Option {
	return func(fs *FS) {
		fs.strict = strict
	}
}

func WithClock(now func() time.Time) Option {
	return func(fs *FS) {
		fs.now = now
	}
}
