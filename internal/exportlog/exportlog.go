// Package exportlog keeps the append-only audit trail of exported artifacts.
// The trail outlives recording replacement within a session; the sqlite store
// additionally outlives the process.
package exportlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry records one export that took place.
type Entry struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-only export registry. Implementations must preserve
// insertion order in List.
type Store interface {
	// Append records a new export and returns the stored entry with its
	// assigned identifier and timestamp.
	Append(format, path, detail string) (Entry, error)

	// List returns all recorded exports, oldest first.
	List() ([]Entry, error)

	// Len returns the number of recorded exports.
	Len() int
}

// MemoryStore is the default session-scoped store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore returns an empty in-memory export log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(format, path, detail string) (Entry, error) {
	if format == "" {
		return Entry{}, fmt.Errorf("export format must not be empty")
	}

	e := Entry{
		ID:        uuid.NewString(),
		Format:    format,
		Path:      path,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return e, nil
}

func (s *MemoryStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...), nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
