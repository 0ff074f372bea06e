package mfsdav

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/pkg/errors"
)

// FS presents the peer's mutable namespace as a filesystem. Metadata is
// served from the cache where possible; content always goes to the store.
//
// Mutating operations are lenient by default: when the store fails, the
// failure is logged and the call reports success with the cache left as it
// was. WithStrictErrors turns this off.
type FS struct {
	store  peer.Store
	cache  *Cache
	log    log.Interface
	strict bool
	now    func() time.Time
}

func New(store peer.Store, opts ...Option) *FS {
	fs := &FS{
		store: store,
		log:   log.Log,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(fs)
	}

	if fs.cache == nil {
		fs.cache = NewCache()
	}

	return fs
}

func (fs *FS) Cache() *Cache {
	return fs.cache
}

func (fs *FS) Store() peer.Store {
	return fs.store
}

func (fs *FS) Strict() bool {
	return fs.strict
}

// Open returns a handle for the file at path. It only consults the cache, so
// an existing file has to have been listed or stat'ed before its size is
// known.
func (fs *FS) Open(_ context.Context, path string, opts OpenOptions) (*File, error) {
	path = peer.NormalizePath(path)
	now := fs.now()

	f := &File{
		fs:         fs,
		path:       path,
		append:     opts.Append,
		truncate:   opts.Truncate,
		createdAt:  now,
		modifiedAt: now,
	}

	node, err := fs.cache.Get(path)
	switch {
	case err == nil && opts.CreateNew:
		return nil, errors.Wrapf(ErrExists, "open %s", path)
	case err == nil && node.IsDir():
		return nil, errors.Wrapf(ErrForbidden, "open %s: is a directory", path)
	case err == nil:
		f.size = node.Size
		f.createdAt = node.CreatedAt
	case !opts.Create:
		return nil, errors.Wrapf(ErrNotFound, "open %s", path)
	}

	return f, nil
}

// DirIterator yields the entries of one directory listing. It can be walked
// once.
type DirIterator struct {
	entries []EntryInfo
	next    int
}

func (it *DirIterator) Next() (EntryInfo, bool) {
	if it.next >= len(it.entries) {
		return EntryInfo{}, false
	}

	e := it.entries[it.next]
	it.next++
	return e, true
}

// All drains the iterator and returns whatever was left in it.
func (it *DirIterator) All() []EntryInfo {
	rest := it.entries[it.next:]
	it.next = len(it.entries)
	return rest
}

// ReadDir lists path on the store and caches every child it sees. A failed
// listing yields an empty iterator.
func (fs *FS) ReadDir(ctx context.Context, path string) *DirIterator {
	path = peer.NormalizePath(path)

	entries, err := fs.store.List(ctx, path)
	if err != nil {
		fs.log.WithFields(log.Fields{"op": "readdir", "path": path}).WithError(err).Warn("listing failed")
		return &DirIterator{}
	}

	it := &DirIterator{entries: make([]EntryInfo, 0, len(entries))}
	for _, entry := range entries {
		node := NodeFromEntry(entry)
		fs.cache.Insert(entry.Path, node)
		it.entries = append(it.entries, node.Info(entry.Path))
	}

	return it
}

func (fs *FS) Metadata(ctx context.Context, path string) (EntryInfo, error) {
	path = peer.NormalizePath(path)

	if node, err := fs.cache.Get(path); err == nil {
		return node.Info(path), nil
	}

	entry, err := fs.store.Stat(ctx, path)
	if err != nil {
		return EntryInfo{}, classify(err, "stat", path)
	}

	node := NodeFromEntry(entry)
	fs.cache.Insert(path, node)
	return node.Info(path), nil
}

func (fs *FS) CreateDirectory(ctx context.Context, path string) error {
	path = peer.NormalizePath(path)

	if path == "/" || fs.cache.Contains(path) {
		return errors.Wrapf(ErrExists, "mkdir %s", path)
	}

	parent := peer.ParentPath(path)
	if parent != "/" {
		node, err := fs.parentNode(ctx, parent)
		if err != nil {
			return errors.Wrapf(ErrForbidden, "mkdir %s: parent %s: %s", path, parent, err)
		}

		if !node.IsDir() {
			return errors.Wrapf(ErrForbidden, "mkdir %s: parent %s is not a directory", path, parent)
		}
	}

	entry, err := fs.store.MakeDirectory(ctx, path)
	if err != nil {
		return fs.failed("mkdir", path, err)
	}

	fs.cache.Insert(path, NodeFromEntry(entry))
	return nil
}

// parentNode looks up a parent directory, asking the store when the cache
// does not know it.
func (fs *FS) parentNode(ctx context.Context, parent string) (Node, error) {
	if node, err := fs.cache.Get(parent); err == nil {
		return node, nil
	}

	entry, err := fs.store.Stat(ctx, parent)
	if err != nil {
		return Node{}, classify(err, "stat", parent)
	}

	node := NodeFromEntry(entry)
	fs.cache.Insert(parent, node)
	return node, nil
}

func (fs *FS) RemoveDirectory(ctx context.Context, path string) error {
	return fs.remove(ctx, "rmdir", path)
}

func (fs *FS) RemoveFile(ctx context.Context, path string) error {
	return fs.remove(ctx, "rm", path)
}

func (fs *FS) remove(ctx context.Context, op, path string) error {
	path = peer.NormalizePath(path)

	if err := fs.store.Remove(ctx, path); err != nil {
		return fs.failed(op, path, err)
	}

	fs.cache.RemoveTree(path)
	return nil
}

func (fs *FS) Rename(ctx context.Context, from, to string) error {
	from = peer.NormalizePath(from)
	to = peer.NormalizePath(to)

	if err := fs.store.Move(ctx, from, to); err != nil {
		return fs.failed("mv", from, err)
	}

	fs.cache.MoveValues(from, to)
	return nil
}

func (fs *FS) Copy(ctx context.Context, from, to string) error {
	from = peer.NormalizePath(from)
	to = peer.NormalizePath(to)

	if err := fs.store.Copy(ctx, from, to); err != nil {
		return fs.failed("cp", from, err)
	}

	fs.cache.CopyValues(from, to)
	return nil
}

// failed handles a store failure in a mutating operation.
func (fs *FS) failed(op, path string, err error) error {
	fs.log.WithFields(log.Fields{"op": op, "path": path}).WithError(err).Warn("backend call failed")
	if !fs.strict {
		return nil
	}

	return classify(err, op, path)
}
