package davserver

import (
	"context"
	"errors"
	"os"

	"github.com/apex/log"
	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"golang.org/x/net/webdav"
)

// FileSystem adapts an mfsdav.FS to webdav.FileSystem.
type FileSystem struct {
	fs  *mfsdav.FS
	log log.Interface
}

var _ webdav.FileSystem = (*FileSystem)(nil)

func NewFileSystem(fs *mfsdav.FS, logger log.Interface) *FileSystem {
	if logger == nil {
		logger = log.Log
	}

	return &FileSystem{fs: fs, log: logger}
}

func (fsys *FileSystem) Mkdir(ctx context.Context, name string, _ os.FileMode) error {
	return toPathError("mkdir", name, fsys.fs.CreateDirectory(ctx, name))
}

// OpenFile looks the path up first so that the core open, which only reads
// the cache, knows about files it has not listed yet. Directories are opened
// for listing and properties as long as nothing asks to write to them.
func (fsys *FileSystem) OpenFile(ctx context.Context, name string, flag int, _ os.FileMode) (webdav.File, error) {
	opts := mfsdav.OpenOptionsFromFlags(flag)

	info, err := fsys.fs.Metadata(ctx, name)
	switch {
	case err == nil && info.IsDir() && !opensForWrite(opts):
		return &davFile{ctx: ctx, fs: fsys.fs, path: peer.NormalizePath(name), dirInfo: info}, nil
	case err != nil && !errors.Is(err, mfsdav.ErrNotFound):
		return nil, toPathError("open", name, err)
	case err != nil && opts.Create:
		if err := fsys.checkParent(ctx, name); err != nil {
			return nil, err
		}
	}

	f, openErr := fsys.fs.Open(ctx, name, opts)
	if openErr != nil {
		return nil, toPathError("open", name, openErr)
	}

	// A new file that is closed without being written still has to exist.
	created := errors.Is(err, mfsdav.ErrNotFound)
	return &davFile{ctx: ctx, fs: fsys.fs, path: f.Path(), file: f, mustCreate: created}, nil
}

// opensForWrite reports whether opts would modify the target; a directory
// cannot be opened that way.
func opensForWrite(opts mfsdav.OpenOptions) bool {
	return opts.CreateNew || opts.Append || opts.Truncate || (opts.Write && !opts.Read)
}

// checkParent refuses to create a file whose parent is missing or is not a
// directory.
func (fsys *FileSystem) checkParent(ctx context.Context, name string) error {
	parent := peer.ParentPath(name)
	info, err := fsys.fs.Metadata(ctx, parent)
	if err != nil {
		return toPathError("open", name, err)
	}

	if !info.IsDir() {
		return &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}

	return nil
}

func (fsys *FileSystem) RemoveAll(ctx context.Context, name string) error {
	info, err := fsys.fs.Metadata(ctx, name)
	switch {
	case errors.Is(err, mfsdav.ErrNotFound):
		return nil
	case err != nil:
		return toPathError("remove", name, err)
	case info.IsDir():
		return toPathError("remove", name, fsys.fs.RemoveDirectory(ctx, name))
	default:
		return toPathError("remove", name, fsys.fs.RemoveFile(ctx, name))
	}
}

func (fsys *FileSystem) Rename(ctx context.Context, oldName, newName string) error {
	return toPathError("rename", oldName, fsys.fs.Rename(ctx, oldName, newName))
}

func (fsys *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	info, err := fsys.fs.Metadata(ctx, name)
	if err != nil {
		return nil, toPathError("stat", name, err)
	}

	return info, nil
}
