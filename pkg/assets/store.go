// store.go — Read-only asset stores for templates and fonts.
// A store is any fs.FS: a directory on disk, a .zip bundle, or an in-memory map.
package assets

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotExist is returned when a logical path is not present in a store.
var ErrNotExist = fs.ErrNotExist

// Store is the read-only view of the asset store the engine consumes.
// Paths are slash-separated and relative ("templates/alvora/label.pdf").
type Store = fs.FS

// DirStore serves assets from a directory on disk.
func DirStore(root string) Store {
	return os.DirFS(root)
}

// OpenBundle opens a .zip asset bundle (templates/ and fonts/ at its root).
// The returned cleanup function closes the archive.
func OpenBundle(p string) (Store, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, noop, fmt.Errorf("open bundle %s: %w", p, err)
	}

	// Guard against zip slip style names; fs.FS rejects them on Open but
	// a bundle carrying them is malformed and should not be served at all.
	for _, f := range r.File {
		if !fs.ValidPath(strings.TrimSuffix(f.Name, "/")) {
			r.Close()
			return nil, noop, fmt.Errorf("illegal path in bundle: %s", f.Name)
		}
	}

	return &r.Reader, func() { r.Close() }, nil
}

// Open returns a store for p: a bundle when p ends in .zip, a directory otherwise.
func Open(p string) (Store, func(), error) {
	if strings.EqualFold(path.Ext(p), ".zip") {
		return OpenBundle(p)
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open assets %s: %w", p, err)
	}
	if !info.IsDir() {
		return nil, func() {}, fmt.Errorf("open assets %s: not a directory or .zip bundle", p)
	}
	return DirStore(p), func() {}, nil
}

// ReadFile reads name from store.
func ReadFile(store Store, name string) ([]byte, error) {
	return fs.ReadFile(store, name)
}

// ── In-memory store ──

// MemStore is a mutable in-memory store, used by the WASM client and tests.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

// Add stores data under name, replacing any previous content.
func (m *MemStore) Add(name string, data []byte) {
	m.mu.Lock()
	m.files[path.Clean(name)] = data
	m.mu.Unlock()
}

// Remove deletes name from the store.
func (m *MemStore) Remove(name string) {
	m.mu.Lock()
	delete(m.files, path.Clean(name))
	m.mu.Unlock()
}

// Names lists stored paths in lexical order.
func (m *MemStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open implements fs.FS. Only regular files can be opened.
func (m *MemStore) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	m.mu.RLock()
	data, ok := m.files[name]
	m.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: name, data: data}, nil
}

// ReadFile implements fs.ReadFileFS without an intermediate copy.
func (m *MemStore) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.files[name]
	m.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

type memFile struct {
	name string
	data []byte
	off  int
}

func (f *memFile) Stat() (fs.FileInfo, error) { return memInfo{f}, nil }
func (f *memFile) Close() error               { return nil }

func (f *memFile) Read(p []byte) (int, error) {
	if f.off >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.off:])
	f.off += n
	return n, nil
}

type memInfo struct{ f *memFile }

func (i memInfo) Name() string       { return path.Base(i.f.name) }
func (i memInfo) Size() int64        { return int64(len(i.f.data)) }
func (i memInfo) Mode() fs.FileMode  { return 0o444 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }
