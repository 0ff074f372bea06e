package mfsdav

import (
	"context"
	"net/http"
	"sort"

	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/pkg/errors"
)

// PropertyPatch sets Property, or removes it when Remove is true.
type PropertyPatch struct {
	Remove   bool
	Property Property
}

// PropertyStatus is the outcome of one patch. Property carries no value.
type PropertyStatus struct {
	Property Property
	Status   int
}

// Properties returns the extended properties of path, sorted by namespace and
// name. Values are left out unless withValues is set. Properties live only in
// the cache.
func (fs *FS) Properties(_ context.Context, path string, withValues bool) ([]Property, error) {
	node, err := fs.cache.Get(path)
	if err != nil {
		return nil, err
	}

	props := make([]Property, 0, len(node.Properties))
	for _, p := range node.Properties {
		if !withValues {
			p = p.withoutValue()
		}
		props = append(props, p)
	}

	sort.Slice(props, func(i, j int) bool {
		if props[i].Namespace != props[j].Namespace {
			return props[i].Namespace < props[j].Namespace
		}
		return props[i].Name < props[j].Name
	})

	return props, nil
}

// Property returns the value of one property. A property recorded without a
// value counts as missing.
func (fs *FS) Property(_ context.Context, path string, key PropertyKey) ([]byte, error) {
	node, err := fs.cache.Get(path)
	if err != nil {
		return nil, err
	}

	p, ok := node.Properties[key]
	if !ok || p.Value == nil {
		return nil, errors.Wrapf(ErrNotFound, "property {%s}%s on %s", key.Space, key.Local, peer.NormalizePath(path))
	}

	return p.Value, nil
}

// PatchProperties applies patches in order and writes the node back.
// Removing a property that is not set still succeeds.
func (fs *FS) PatchProperties(_ context.Context, path string, patches []PropertyPatch) ([]PropertyStatus, error) {
	node, err := fs.cache.Get(path)
	if err != nil {
		return nil, err
	}

	if node.Properties == nil {
		node.Properties = make(map[PropertyKey]Property)
	}

	statuses := make([]PropertyStatus, 0, len(patches))
	for _, patch := range patches {
		p := patch.Property
		if patch.Remove {
			delete(node.Properties, p.Key())
		} else {
			node.Properties[p.Key()] = p.clone()
		}

		statuses = append(statuses, PropertyStatus{Property: p.withoutValue(), Status: http.StatusOK})
	}

	fs.cache.Insert(path, node)
	return statuses, nil
}
