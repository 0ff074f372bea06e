package peer

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("no such file or directory")
	ErrExists   = errors.New("file already exists")
)

// Store is the set of operations the filesystem needs from a peer node's
// mutable namespace. Paths handed to a Store are already normalized.
type Store interface {
	// List returns the entries directly under path.
	List(ctx context.Context, path string) ([]Entry, error)

	// Stat returns the entry for path.
	Stat(ctx context.Context, path string) (Entry, error)

	// MakeDirectory creates the directory path. The parent must exist.
	MakeDirectory(ctx context.Context, path string) (Entry, error)

	// Remove removes path, recursively for directories.
	Remove(ctx context.Context, path string) error

	// Move moves path to dest.
	Move(ctx context.Context, path, dest string) error

	// Copy copies path to dest.
	Copy(ctx context.Context, path, dest string) error

	// Read returns up to count bytes of path starting at offset.
	Read(ctx context.Context, path string, offset, count int64) ([]byte, error)

	// Write writes data to path at offset, creating the file if needed. When
	// truncate is set the file is truncated before the write.
	Write(ctx context.Context, path string, offset int64, truncate bool, data []byte) error

	// Flush persists the data of path on the node.
	Flush(ctx context.Context, path string) error
}

// Entry is a single file or directory as reported by the node.
type Entry struct {
	Path       string
	CreatedAt  time.Time
	ModifiedAt time.Time
	IsDir      bool
	Size       int64
}

func newDirEntry(path string, now time.Time) Entry {
	return Entry{Path: path, CreatedAt: now, ModifiedAt: now, IsDir: true}
}
