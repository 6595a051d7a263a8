package recording

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Loader decodes a source file into a Recording. Implementations own the
// format parsing entirely; this package only dispatches on extension.
type Loader interface {
	// Load decodes the file at path into a Recording.
	Load(path string) (Recording, error)

	// Extensions lists the lowercase file extensions this loader handles,
	// without the leading dot (e.g. "edf", "bdf").
	Extensions() []string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Loader{}
)

// Register makes a loader available for its extensions. Later registrations
// for the same extension win, so an application can replace the built-in
// synthetic loader with a real decoder.
func Register(l Loader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, ext := range l.Extensions() {
		registry[strings.ToLower(ext)] = l
	}
}

// SupportedExtensions returns the registered extensions, sorted.
func SupportedExtensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load dispatches to the loader registered for the file's extension.
func Load(path string) (Recording, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot determine format: %s has no extension", path)
	}

	registryMu.RLock()
	l, ok := registry[ext]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported recording format %q (registered: %s)",
			ext, strings.Join(SupportedExtensions(), ", "))
	}

	rec, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return rec, nil
}
