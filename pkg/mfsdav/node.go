package mfsdav

import (
	"encoding/xml"
	"os"
	"time"

	"github.com/debox-network/ipfs-webdav/pkg/peer"
)

type NodeKind int

const (
	DirectoryNode NodeKind = iota
	FileNode
)

// PropertyKey identifies an extended property by namespace and local name.
// Keeping the two parts apart means ("a", "bc") and ("ab", "c") never alias.
type PropertyKey = xml.Name

// Property is an extended (dead) property attached to a path. A nil Value
// means the property was recorded without a payload.
type Property struct {
	Name      string
	Namespace string
	Lang      string
	Value     []byte
}

func (p Property) Key() PropertyKey {
	return PropertyKey{Space: p.Namespace, Local: p.Name}
}

// withoutValue returns p with its payload dropped, for name-only listings.
func (p Property) withoutValue() Property {
	p.Value = nil
	return p
}

func (p Property) clone() Property {
	if p.Value != nil {
		p.Value = append([]byte{}, p.Value...)
	}
	return p
}

// Node is the cached metadata of one path. A node is either a directory or a
// file; a path only changes kind by being removed and created again.
type Node struct {
	Kind       NodeKind
	CreatedAt  time.Time
	ModifiedAt time.Time
	Size       int64
	Properties map[PropertyKey]Property
}

func NewDirectoryNode(now time.Time) Node {
	return Node{Kind: DirectoryNode, CreatedAt: now, ModifiedAt: now}
}

func NewFileNode(size int64, createdAt, modifiedAt time.Time) Node {
	return Node{Kind: FileNode, CreatedAt: createdAt, ModifiedAt: modifiedAt, Size: size}
}

// NodeFromEntry converts an entry reported by the peer into a Node with no
// properties.
func NodeFromEntry(e peer.Entry) Node {
	if e.IsDir {
		return Node{Kind: DirectoryNode, CreatedAt: e.CreatedAt, ModifiedAt: e.ModifiedAt}
	}

	return NewFileNode(e.Size, e.CreatedAt, e.ModifiedAt)
}

func (n Node) IsDir() bool {
	return n.Kind == DirectoryNode
}

// Clone returns a deep copy so the caller may mutate the property map.
func (n Node) Clone() Node {
	if n.Properties == nil {
		return n
	}

	props := make(map[PropertyKey]Property, len(n.Properties))
	for k, p := range n.Properties {
		props[k] = p.clone()
	}
	n.Properties = props
	return n
}

// Info projects the node onto the directory entry view for path.
func (n Node) Info(path string) EntryInfo {
	info := EntryInfo{
		name:       peer.BaseName(path),
		isDir:      n.IsDir(),
		modifiedAt: n.ModifiedAt,
		createdAt:  n.CreatedAt,
	}

	if !n.IsDir() {
		info.size = n.Size
	}

	return info
}

// EntryInfo is the view of a node handed to the protocol layer. It
// implements os.FileInfo.
type EntryInfo struct {
	name       string
	size       int64
	isDir      bool
	modifiedAt time.Time
	createdAt  time.Time
}

var _ os.FileInfo = EntryInfo{}

func (i EntryInfo) Name() string         { return i.name }
func (i EntryInfo) Size() int64          { return i.size }
func (i EntryInfo) IsDir() bool          { return i.isDir }
func (i EntryInfo) ModTime() time.Time   { return i.modifiedAt }
func (i EntryInfo) CreatedAt() time.Time { return i.createdAt }
func (i EntryInfo) Sys() interface{}     { return nil }

func (i EntryInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
