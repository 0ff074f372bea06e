package peer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Operation names, used for metrics labels and by MemStore failure injection.
const (
	OpList          = "list"
	OpStat          = "stat"
	OpMakeDirectory = "mkdir"
	OpRemove        = "rm"
	OpMove          = "mv"
	OpCopy          = "cp"
	OpRead          = "read"
	OpWrite         = "write"
	OpFlush         = "flush"
)

type memNode struct {
	isDir    bool
	data     []byte
	created  time.Time
	modified time.Time
}

// MemStore is an in-memory Store. It behaves like a node's mutable namespace
// closely enough to run the filesystem without a node, and lets tests inject
// failures and count calls.
type MemStore struct {
	mu       sync.Mutex
	nodes    map[string]*memNode
	failures map[string][]error
	calls    map[string]int
	now      func() time.Time
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	s := &MemStore{
		nodes:    make(map[string]*memNode),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
		now:      time.Now,
	}
	now := s.now()
	s.nodes["/"] = &memNode{isDir: true, created: now, modified: now}
	return s
}

// FailNext makes the next call of op return err. Calls queue up, so calling
// FailNext twice fails the next two calls.
func (s *MemStore) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Calls returns how many times op has been called, including failed calls.
func (s *MemStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ResetCalls zeroes the call counters.
func (s *MemStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// Contents returns a copy of the data stored at path, for assertions.
func (s *MemStore) Contents(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[NormalizePath(path)]
	if !ok || n.isDir {
		return nil, false
	}

	return append([]byte(nil), n.data...), true
}

// enter must be called with s.mu held. It records the call and pops an
// injected failure if there is one.
func (s *MemStore) enter(op string) error {
	s.calls[op]++
	if errs := s.failures[op]; len(errs) > 0 {
		s.failures[op] = errs[1:]
		return errs[0]
	}

	return nil
}

func (s *MemStore) List(_ context.Context, path string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpList); err != nil {
		return nil, err
	}

	path = NormalizePath(path)
	dir, ok := s.nodes[path]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "ls %s", path)
	}

	if !dir.isDir {
		return []Entry{s.entry(path, dir)}, nil
	}

	var entries []Entry
	for p, n := range s.nodes {
		if p != "/" && ParentPath(p) == path {
			entries = append(entries, s.entry(p, n))
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (s *MemStore) Stat(_ context.Context, path string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpStat); err != nil {
		return Entry{}, err
	}

	path = NormalizePath(path)
	n, ok := s.nodes[path]
	if !ok {
		return Entry{}, errors.Wrapf(ErrNotFound, "stat %s", path)
	}

	return s.entry(path, n), nil
}

func (s *MemStore) MakeDirectory(_ context.Context, path string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpMakeDirectory); err != nil {
		return Entry{}, err
	}

	path = NormalizePath(path)
	if _, ok := s.nodes[path]; ok {
		return Entry{}, errors.Wrapf(ErrExists, "mkdir %s", path)
	}

	if err := s.checkParent(path); err != nil {
		return Entry{}, err
	}

	now := s.now()
	s.nodes[path] = &memNode{isDir: true, created: now, modified: now}
	return newDirEntry(path, now), nil
}

func (s *MemStore) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRemove); err != nil {
		return err
	}

	path = NormalizePath(path)
	if path == "/" {
		return errors.New("cannot remove root")
	}

	if _, ok := s.nodes[path]; !ok {
		return errors.Wrapf(ErrNotFound, "rm %s", path)
	}

	for p := range s.nodes {
		if IsUnder(p, path) {
			delete(s.nodes, p)
		}
	}

	return nil
}

func (s *MemStore) Move(_ context.Context, path, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpMove); err != nil {
		return err
	}

	moved, err := s.subtree(path, dest)
	if err != nil {
		return errors.WithMessage(err, "mv")
	}

	for p := range moved {
		delete(s.nodes, p)
	}

	for p, n := range moved {
		s.nodes[Rebase(p, path, dest)] = n
	}

	return nil
}

func (s *MemStore) Copy(_ context.Context, path, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpCopy); err != nil {
		return err
	}

	copied, err := s.subtree(path, dest)
	if err != nil {
		return errors.WithMessage(err, "cp")
	}

	for p, n := range copied {
		dup := *n
		dup.data = append([]byte(nil), n.data...)
		s.nodes[Rebase(p, path, dest)] = &dup
	}

	return nil
}

func (s *MemStore) Read(_ context.Context, path string, offset, count int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRead); err != nil {
		return nil, err
	}

	path = NormalizePath(path)
	n, ok := s.nodes[path]
	switch {
	case !ok:
		return nil, errors.Wrapf(ErrNotFound, "read %s", path)
	case n.isDir:
		return nil, errors.Errorf("read %s: is a directory", path)
	case offset < 0 || count < 0:
		return nil, errors.Errorf("read %s: negative offset or count", path)
	}

	size := int64(len(n.data))
	if offset >= size {
		return []byte{}, nil
	}

	end := offset + count
	if end > size {
		end = size
	}

	return append([]byte(nil), n.data[offset:end]...), nil
}

func (s *MemStore) Write(_ context.Context, path string, offset int64, truncate bool, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpWrite); err != nil {
		return err
	}

	path = NormalizePath(path)
	if offset < 0 {
		return errors.Errorf("write %s: negative offset", path)
	}

	n, ok := s.nodes[path]
	switch {
	case ok && n.isDir:
		return errors.Errorf("write %s: is a directory", path)
	case !ok:
		if err := s.checkParent(path); err != nil {
			return err
		}
		now := s.now()
		n = &memNode{created: now, modified: now}
		s.nodes[path] = n
	}

	if truncate {
		n.data = nil
	}

	end := offset + int64(len(data))
	if end > int64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}

	copy(n.data[offset:], data)
	n.modified = s.now()
	return nil
}

func (s *MemStore) Flush(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFlush); err != nil {
		return err
	}

	path = NormalizePath(path)
	if _, ok := s.nodes[path]; !ok {
		return errors.Wrapf(ErrNotFound, "flush %s", path)
	}

	return nil
}

func (s *MemStore) entry(path string, n *memNode) Entry {
	return Entry{
		Path:       path,
		CreatedAt:  n.created,
		ModifiedAt: n.modified,
		IsDir:      n.isDir,
		Size:       int64(len(n.data)),
	}
}

// checkParent must be called with s.mu held.
func (s *MemStore) checkParent(path string) error {
	parent, ok := s.nodes[ParentPath(path)]
	switch {
	case !ok:
		return errors.Wrapf(ErrNotFound, "parent of %s", path)
	case !parent.isDir:
		return errors.Errorf("parent of %s is not a directory", path)
	default:
		return nil
	}
}

// subtree validates a move or copy of path to dest and returns the nodes that
// take part in it. Must be called with s.mu held.
func (s *MemStore) subtree(path, dest string) (map[string]*memNode, error) {
	path = NormalizePath(path)
	dest = NormalizePath(dest)

	if _, ok := s.nodes[path]; !ok {
		return nil, errors.Wrapf(ErrNotFound, "source %s", path)
	}

	if _, ok := s.nodes[dest]; ok {
		return nil, errors.Wrapf(ErrExists, "destination %s", dest)
	}

	if path == "/" || IsUnder(dest, path) {
		return nil, errors.Errorf("cannot place %s inside itself (%s)", path, dest)
	}

	if err := s.checkParent(dest); err != nil {
		return nil, err
	}

	nodes := make(map[string]*memNode)
	for p, n := range s.nodes {
		if IsUnder(p, path) {
			nodes[p] = n
		}
	}

	return nodes, nil
}
