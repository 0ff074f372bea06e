package mfsdav

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// File is an open handle on one path. Position and size are local to the
// handle; two handles on the same path do not see each other, and whichever
// flushes last decides what the cache holds.
//
// A File is not safe for concurrent use.
type File struct {
	fs         *FS
	path       string
	pos        int64
	size       int64
	append     bool
	truncate   bool
	dirty      bool
	createdAt  time.Time
	modifiedAt time.Time
}

func (f *File) Path() string    { return f.path }
func (f *File) Position() int64 { return f.pos }
func (f *File) Size() int64     { return f.size }

// Dirty reports whether the handle has written since it was opened or last
// flushed.
func (f *File) Dirty() bool { return f.dirty }

// TruncatePending reports whether the handle was opened to truncate and has
// not written yet. The store only truncates on a write.
func (f *File) TruncatePending() bool { return f.truncate }

// Write sends p to the store at the current position. In append mode the
// position first moves to the end. Only the first write of a truncating
// handle truncates.
func (f *File) Write(ctx context.Context, p []byte) (int, error) {
	if f.append {
		f.pos = f.size
	}

	offset := f.pos
	if err := f.fs.store.Write(ctx, f.path, offset, f.truncate, p); err != nil {
		if err := f.fs.failed("write", f.path, err); err != nil {
			return 0, err
		}
	}

	f.size = offset + int64(len(p))
	f.pos = f.size
	f.truncate = false
	f.dirty = true
	f.modifiedAt = f.fs.now()

	return len(p), nil
}

// WriteChunks writes each chunk with its own store call.
func (f *File) WriteChunks(ctx context.Context, chunks [][]byte) (int64, error) {
	var total int64
	for _, chunk := range chunks {
		n, err := f.Write(ctx, chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Read asks the store for count bytes at the current position. The position
// advances by the number of bytes returned, which is less than count near the
// end of the file. A path the store does not know is ErrNotFound.
func (f *File) Read(ctx context.Context, count int) ([]byte, error) {
	if count < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "read %s: negative count %d", f.path, count)
	}

	data, err := f.fs.store.Read(ctx, f.path, f.pos, int64(count))
	if err != nil {
		return nil, classify(err, "read", f.path)
	}

	f.pos += int64(len(data))
	return data, nil
}

// Seek moves the position. Seeking past the end is allowed; seeking before
// the start is not, not even with io.SeekStart.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return f.pos, errors.Wrapf(ErrInvalidArgument, "seek %s to %d", f.path, offset)
		}
		f.pos = offset
		return f.pos, nil
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = f.size
	default:
		return f.pos, errors.Wrapf(ErrInvalidArgument, "seek %s: bad whence %d", f.path, whence)
	}

	if offset < 0 && -offset > base {
		return f.pos, errors.Wrapf(ErrInvalidArgument, "seek %s: %d before start", f.path, base+offset)
	}

	f.pos = base + offset
	return f.pos, nil
}

// Flush commits pending writes on the store and records the file in the
// cache. Properties already cached for the path are kept.
func (f *File) Flush(ctx context.Context) error {
	if err := f.fs.store.Flush(ctx, f.path); err != nil {
		return f.fs.failed("flush", f.path, err)
	}

	node := NewFileNode(f.size, f.createdAt, f.modifiedAt)
	if cached, err := f.fs.cache.Get(f.path); err == nil && !cached.IsDir() {
		node.Properties = cached.Properties
	}

	f.fs.cache.Insert(f.path, node)
	f.dirty = false
	return nil
}

// Metadata returns what the cache knows about the path, which can lag behind
// unflushed writes on this handle.
func (f *File) Metadata(_ context.Context) (EntryInfo, error) {
	node, err := f.fs.cache.Get(f.path)
	if err != nil {
		return EntryInfo{}, err
	}

	return node.Info(f.path), nil
}

// Info describes the handle's own view of the file.
func (f *File) Info() EntryInfo {
	return NewFileNode(f.size, f.createdAt, f.modifiedAt).Info(f.path)
}
