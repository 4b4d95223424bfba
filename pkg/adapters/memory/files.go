package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/hearth/pkg/domain"
)

// Files implements ports.FileLister over a fixed directory listing.
type Files struct {
	mu   sync.RWMutex
	dirs map[string][]string
}

// NewFiles creates a lister from a map of directory to file names.
func NewFiles(dirs map[string][]string) *Files {
	f := &Files{dirs: make(map[string][]string, len(dirs))}
	for dir, names := range dirs {
		f.Put(dir, names...)
	}
	return f
}

// Put replaces the listing of dir.
func (f *Files) Put(dir string, names ...string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[clean(dir)] = sorted
}

// ListFiles returns the names registered for dir.
func (f *Files) ListFiles(ctx context.Context, dir string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names, ok := f.dirs[clean(dir)]
	if !ok {
		return nil, fmt.Errorf("%w: directory %q not found", domain.ErrLookup, dir)
	}
	return append([]string(nil), names...), nil
}

func clean(dir string) string {
	return strings.TrimRight(dir, "/")
}

// Config implements ports.ConfigStore over a flat map of dotted keys.
type Config map[string]any

// Get returns the value stored under key.
func (c Config) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}
