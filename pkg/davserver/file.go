package davserver

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"

	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"golang.org/x/net/webdav"
)

// davFile is either an open mfsdav.File or a directory opened for listing.
// webdav.File methods carry no context, so the one from OpenFile is kept.
type davFile struct {
	ctx  context.Context
	fs   *mfsdav.FS
	path string

	file       *mfsdav.File
	mustCreate bool

	dirInfo  mfsdav.EntryInfo
	children []os.FileInfo
	listed   bool
}

var (
	_ webdav.File            = (*davFile)(nil)
	_ webdav.DeadPropsHolder = (*davFile)(nil)
	_ webdav.ContentTyper    = (*davFile)(nil)
)

func (f *davFile) isDir() bool {
	return f.file == nil
}

func (f *davFile) Close() error {
	if f.isDir() {
		return nil
	}

	// An empty body never reaches Write, so a new file or a pending
	// truncate still needs one write to take effect on the node.
	if (f.mustCreate || f.file.TruncatePending()) && !f.file.Dirty() {
		if _, err := f.file.Write(f.ctx, []byte{}); err != nil {
			return toPathError("close", f.path, err)
		}
	}

	if !f.file.Dirty() {
		return nil
	}

	return toPathError("close", f.path, f.file.Flush(f.ctx))
}

func (f *davFile) Read(p []byte) (int, error) {
	if f.isDir() {
		return 0, &os.PathError{Op: "read", Path: f.path, Err: os.ErrInvalid}
	}

	remaining := f.file.Size() - f.file.Position()
	if remaining <= 0 {
		return 0, io.EOF
	}

	count := len(p)
	if int64(count) > remaining {
		count = int(remaining)
	}

	data, err := f.file.Read(f.ctx, count)
	if err != nil {
		return 0, toPathError("read", f.path, err)
	}

	if len(data) == 0 && count > 0 {
		return 0, io.EOF
	}

	return copy(p, data), nil
}

func (f *davFile) Write(p []byte) (int, error) {
	if f.isDir() {
		return 0, &os.PathError{Op: "write", Path: f.path, Err: os.ErrPermission}
	}

	n, err := f.file.Write(f.ctx, p)
	return n, toPathError("write", f.path, err)
}

func (f *davFile) Seek(offset int64, whence int) (int64, error) {
	if f.isDir() {
		return 0, &os.PathError{Op: "seek", Path: f.path, Err: os.ErrInvalid}
	}

	pos, err := f.file.Seek(offset, whence)
	return pos, toPathError("seek", f.path, err)
}

// Readdir follows os.File.Readdir: count <= 0 returns everything left,
// otherwise at most count entries and io.EOF once the listing is exhausted.
func (f *davFile) Readdir(count int) ([]os.FileInfo, error) {
	if !f.isDir() {
		return nil, &os.PathError{Op: "readdir", Path: f.path, Err: os.ErrInvalid}
	}

	if !f.listed {
		for _, info := range f.fs.ReadDir(f.ctx, f.path).All() {
			f.children = append(f.children, info)
		}
		f.listed = true
	}

	if count <= 0 {
		rest := f.children
		f.children = nil
		return rest, nil
	}

	if len(f.children) == 0 {
		return nil, io.EOF
	}

	if count > len(f.children) {
		count = len(f.children)
	}

	batch := f.children[:count]
	f.children = f.children[count:]
	return batch, nil
}

// Stat prefers the handle's own view while it holds unflushed writes, since
// the cache has not seen them yet.
func (f *davFile) Stat() (os.FileInfo, error) {
	if !f.isDir() && f.file.Dirty() {
		return f.file.Info(), nil
	}

	info, err := f.fs.Metadata(f.ctx, f.path)
	switch {
	case err == nil:
		return info, nil
	case f.isDir():
		return f.dirInfo, nil
	case errors.Is(err, mfsdav.ErrNotFound):
		return f.file.Info(), nil
	default:
		return nil, toPathError("stat", f.path, err)
	}
}

// ContentType guesses from the extension. Without one webdav sniffs the first
// bytes of the file instead.
func (f *davFile) ContentType(_ context.Context) (string, error) {
	if ct := mime.TypeByExtension(path.Ext(f.path)); ct != "" {
		return ct, nil
	}

	return "", webdav.ErrNotImplemented
}

func (f *davFile) DeadProps() (map[xml.Name]webdav.Property, error) {
	props, err := f.fs.Properties(f.ctx, f.path, true)
	if errors.Is(err, mfsdav.ErrNotFound) {
		return map[xml.Name]webdav.Property{}, nil
	}

	if err != nil {
		return nil, toPathError("propfind", f.path, err)
	}

	m := make(map[xml.Name]webdav.Property, len(props))
	for _, p := range props {
		m[p.Key()] = webdav.Property{XMLName: p.Key(), Lang: p.Lang, InnerXML: p.Value}
	}

	return m, nil
}

func (f *davFile) Patch(patches []webdav.Proppatch) ([]webdav.Propstat, error) {
	var changes []mfsdav.PropertyPatch
	for _, patch := range patches {
		for _, p := range patch.Props {
			changes = append(changes, mfsdav.PropertyPatch{
				Remove: patch.Remove,
				Property: mfsdav.Property{
					Name:      p.XMLName.Local,
					Namespace: p.XMLName.Space,
					Lang:      p.Lang,
					Value:     p.InnerXML,
				},
			})
		}
	}

	statuses, err := f.fs.PatchProperties(f.ctx, f.path, changes)
	if err != nil {
		return nil, toPathError("proppatch", f.path, err)
	}

	// One propstat per distinct status, in order of first appearance.
	var propstats []webdav.Propstat
	index := make(map[int]int)
	for _, s := range statuses {
		i, ok := index[s.Status]
		if !ok {
			i = len(propstats)
			index[s.Status] = i
			propstats = append(propstats, webdav.Propstat{Status: s.Status})
		}
		propstats[i].Props = append(propstats[i].Props, webdav.Property{XMLName: s.Property.Key()})
	}

	if len(propstats) == 0 {
		propstats = append(propstats, webdav.Propstat{Status: http.StatusOK})
	}

	return propstats, nil
}
